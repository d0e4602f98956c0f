package config

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"micro-otsu/internal/logger"
	"micro-otsu/internal/models"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper())
	require.NoError(t, err)

	assert.Equal(t, 32, cfg.Target.Width)
	assert.Equal(t, 32, cfg.Target.Height)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "auto", cfg.Log.Format)
	assert.Equal(t, OutputText, cfg.Output.Format)
	assert.Equal(t, "#", cfg.Preview.On)
	assert.Equal(t, ".", cfg.Preview.Off)
	assert.False(t, cfg.Metrics.Extended)
	assert.Equal(t, zerolog.InfoLevel, cfg.Log.ParsedLevel)
	assert.Equal(t, logger.FormatAuto, cfg.Log.ParsedFormat)
}

func TestLoadUnquotedYAMLSwitches(t *testing.T) {
	v := newViper()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(`
log:
  level: off
  format: json
preview:
  foreground: "@"
  background: "-"
`)))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, zerolog.Disabled, cfg.Log.ParsedLevel)
	assert.Equal(t, logger.FormatJSON, cfg.Log.ParsedFormat)
	assert.Equal(t, "@", cfg.Preview.On)
	assert.Equal(t, "-", cfg.Preview.Off)
}

func TestValidateReportsFirstInvalidSymbol(t *testing.T) {
	for i := 0; i < 20; i++ {
		v := newViper()
		v.Set(KeyPreviewOn, "")
		v.Set(KeyPreviewOff, "")

		_, err := Load(v)
		var cfgErr *models.ConfigError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, KeyPreviewOn, cfgErr.Field)
	}
}

func TestLoadFromYAML(t *testing.T) {
	v := newViper()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(`
target:
  width: 16
  height: 8
output:
  format: json
preview:
  foreground: "@"
metrics:
  extended: true
`)))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Target.Width)
	assert.Equal(t, 8, cfg.Target.Height)
	assert.Equal(t, OutputJSON, cfg.Output.Format)
	assert.Equal(t, "@", cfg.Preview.On)
	assert.Equal(t, ".", cfg.Preview.Off)
	assert.True(t, cfg.Metrics.Extended)
}

func TestLoadFromEnvironment(t *testing.T) {
	require.NoError(t, os.Setenv("MICROOTSU_TARGET_WIDTH", "4"))
	defer os.Unsetenv("MICROOTSU_TARGET_WIDTH")

	v := newViper()
	BindEnv(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Target.Width)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value interface{}
	}{
		{"zero width", KeyTargetWidth, 0},
		{"negative height", KeyTargetHeight, -3},
		{"bad level", KeyLogLevel, "loud"},
		{"bad log format", KeyLogFormat, "xml"},
		{"bad output", KeyOutputFormat, "csv"},
		{"long on symbol", KeyPreviewOn, "##"},
		{"empty off symbol", KeyPreviewOff, ""},
		{"same symbols", KeyPreviewOff, "#"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v := newViper()
			v.Set(c.key, c.value)

			_, err := Load(v)
			var cfgErr *models.ConfigError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
		})
	}
}
