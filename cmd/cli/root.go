package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/soundmark/soundmark/pkg/soundmark"
	"github.com/soundmark/soundmark/pkg/soundmark/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "soundmark",
	Short: "Audio fingerprinting CLI",
	Long: `soundmark ingests audio into a fingerprint index and identifies
unknown clips against it, using the same matching engine as the HTTP API.`,
	SilenceUsage:      true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return bindFlags(cmd, viper.GetViper()) },
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.config/soundmark/config.yaml)")
	rootCmd.PersistentFlags().String("db", "soundmark.sqlite3", "path to the SQLite index")
	rootCmd.PersistentFlags().String("temp", os.TempDir(), "temporary directory for downloads and conversions")
	rootCmd.PersistentFlags().Int("rate", 22050, "canonical audio sample rate")
	rootCmd.PersistentFlags().String("log-level", "info", "log level setting (debug, info, warn, error); the logger takes its level from the LOG_LEVEL environment variable, not from this value")

	setDefaults()
}

// bindFlags reconciles a config file's values into any flag the caller left
// unset, then binds every flag to viper (so later code can read either
// source uniformly) and to its SOUNDMARK_-prefixed environment variable.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var lastErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if !f.Changed && v.IsSet(f.Name) {
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name))); err != nil {
				lastErr = err
			}
		}
		if err := v.BindPFlag(f.Name, f); err != nil {
			lastErr = err
		}
		envVar := "SOUNDMARK_" + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if err := v.BindEnv(f.Name, envVar); err != nil {
			lastErr = err
		}
	})
	return lastErr
}

func setDefaults() {
	viper.SetDefault("db", "soundmark.sqlite3")
	viper.SetDefault("temp", os.TempDir())
	viper.SetDefault("rate", 22050)
	viper.SetDefault("log-level", "info")
	viper.SetDefault("score-min", 5)
	viper.SetDefault("margin", 1.5)
	viper.SetDefault("fan-value", 5)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home + "/.config/soundmark")
		}
		viper.AddConfigPath("/etc/soundmark")
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SOUNDMARK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	_ = viper.ReadInConfig()
}

// buildOptions translates the bound viper values into engine options shared
// by every subcommand that opens an Engine.
func buildOptions() []soundmark.Option {
	log := logging.Default()
	return []soundmark.Option{
		soundmark.WithStoragePath(viper.GetString("db")),
		soundmark.WithSampleRate(viper.GetInt("rate")),
		soundmark.WithLogger(log),
	}
}

// newEngine opens the Engine every subcommand operates against.
func newEngine() (*soundmark.Engine, error) {
	return soundmark.New(buildOptions()...)
}
