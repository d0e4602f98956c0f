// Package cli wires configuration, logging and the pipeline into the
// micro-otsu command.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"micro-otsu/internal/config"
)

// Version is overridden at build time with -ldflags "-X micro-otsu/internal/cli.Version=...".
var Version = "dev"

const configName = ".micro-otsu"

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree with its own viper instance.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	v := viper.New()
	config.SetDefaults(v)

	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "micro-otsu [flags] FILE...",
		Short: "Downsample plain PGM images and binarize them with Otsu's method",
		Long: `micro-otsu streams a plain (P2) PGM file once, keeps a fixed-stride subset
of its pixels, computes the Otsu threshold of the reduced grid, prints a
binarized preview and reports PSNR against a threshold-128 binarization.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return run(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, v.ConfigFileUsed(), args)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.micro-otsu.yaml)")
	pf.String("log-level", "info", "log level (debug, info, warn, error, disabled)")
	pf.String("log-format", "auto", "log format (auto, console, json)")
	v.BindPFlag(config.KeyLogLevel, pf.Lookup("log-level"))
	v.BindPFlag(config.KeyLogFormat, pf.Lookup("log-format"))

	f := rootCmd.Flags()
	f.IntP("width", "W", config.DefaultTarget, "width of the reduced grid")
	f.IntP("height", "H", config.DefaultTarget, "height of the reduced grid")
	f.StringP("output", "o", config.OutputText, "report format (text, json)")
	f.String("on", config.DefaultPreviewOn, "preview symbol for foreground cells")
	f.String("off", config.DefaultPreviewOff, "preview symbol for background cells")
	f.Bool("metrics", false, "also report gray PSNR, SSIM and segmentation metrics")
	v.BindPFlag(config.KeyTargetWidth, f.Lookup("width"))
	v.BindPFlag(config.KeyTargetHeight, f.Lookup("height"))
	v.BindPFlag(config.KeyOutputFormat, f.Lookup("output"))
	v.BindPFlag(config.KeyPreviewOn, f.Lookup("on"))
	v.BindPFlag(config.KeyPreviewOff, f.Lookup("off"))
	v.BindPFlag(config.KeyMetricsExtended, f.Lookup("metrics"))

	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func initConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		// Use config file from the flag.
		v.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return fmt.Errorf("failed to locate home directory: %w", err)
		}

		// Search config in home directory with name ".micro-otsu" (without extension).
		v.AddConfigPath(home)
		v.SetConfigName(configName)
	}

	config.BindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// Skip config discovery inherited from the root command.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "micro-otsu %s\n", Version)
		},
	}
}
