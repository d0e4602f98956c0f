// Package config resolves run settings from flags, environment and the
// optional config file through viper.
package config

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"micro-otsu/internal/logger"
	"micro-otsu/internal/models"
)

// Keys
const (
	KeyTargetWidth     = "target.width"
	KeyTargetHeight    = "target.height"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
	KeyOutputFormat    = "output.format"
	KeyPreviewOn       = "preview.foreground"
	KeyPreviewOff      = "preview.background"
	KeyMetricsExtended = "metrics.extended"
)

const (
	DefaultTarget     = 32
	DefaultPreviewOn  = "#"
	DefaultPreviewOff = "."

	OutputText = "text"
	OutputJSON = "json"
)

type Target struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`

	// Resolved by Validate.
	ParsedLevel  zerolog.Level `mapstructure:"-"`
	ParsedFormat logger.Format `mapstructure:"-"`
}

type Output struct {
	Format string `mapstructure:"format"`
}

// Preview keys avoid on/off, which YAML 1.1 reads as booleans.
type Preview struct {
	On  string `mapstructure:"foreground"`
	Off string `mapstructure:"background"`
}

type Metrics struct {
	Extended bool `mapstructure:"extended"`
}

type Config struct {
	Target  Target  `mapstructure:"target"`
	Log     Log     `mapstructure:"log"`
	Output  Output  `mapstructure:"output"`
	Preview Preview `mapstructure:"preview"`
	Metrics Metrics `mapstructure:"metrics"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyTargetWidth, DefaultTarget)
	v.SetDefault(KeyTargetHeight, DefaultTarget)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, string(logger.FormatAuto))
	v.SetDefault(KeyOutputFormat, OutputText)
	v.SetDefault(KeyPreviewOn, DefaultPreviewOn)
	v.SetDefault(KeyPreviewOff, DefaultPreviewOff)
	v.SetDefault(KeyMetricsExtended, false)
}

// EnvPrefix namespaces environment overrides, e.g. MICROOTSU_TARGET_WIDTH.
const EnvPrefix = "MICROOTSU"

// BindEnv makes every key overridable from the environment.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load unmarshals v and validates the result.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode configuration: %w", err)
	}
	// An unquoted "level: off" in a YAML file arrives as false.
	if b, ok := v.Get(KeyLogLevel).(bool); ok && !b {
		cfg.Log.Level = "disabled"
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting as a *models.ConfigError and
// fills the parsed log settings.
func (c *Config) Validate() error {
	if c.Target.Width < 1 {
		return &models.ConfigError{Field: KeyTargetWidth, Reason: fmt.Sprintf("must be at least 1, got %d", c.Target.Width)}
	}
	if c.Target.Height < 1 {
		return &models.ConfigError{Field: KeyTargetHeight, Reason: fmt.Sprintf("must be at least 1, got %d", c.Target.Height)}
	}
	level, err := logger.ParseLevel(c.Log.Level)
	if err != nil {
		return &models.ConfigError{Field: KeyLogLevel, Reason: err.Error()}
	}
	format, err := logger.ParseFormat(c.Log.Format)
	if err != nil {
		return &models.ConfigError{Field: KeyLogFormat, Reason: err.Error()}
	}
	switch c.Output.Format {
	case OutputText, OutputJSON:
	default:
		return &models.ConfigError{Field: KeyOutputFormat, Reason: fmt.Sprintf("unknown format %q", c.Output.Format)}
	}
	symbols := []struct{ key, value string }{
		{KeyPreviewOn, c.Preview.On},
		{KeyPreviewOff, c.Preview.Off},
	}
	for _, sym := range symbols {
		if utf8.RuneCountInString(sym.value) != 1 {
			return &models.ConfigError{Field: sym.key, Reason: fmt.Sprintf("must be a single character, got %q", sym.value)}
		}
	}
	if c.Preview.On == c.Preview.Off {
		return &models.ConfigError{Field: KeyPreviewOn, Reason: "must differ from " + KeyPreviewOff}
	}

	c.Log.ParsedLevel = level
	c.Log.ParsedFormat = format
	return nil
}
