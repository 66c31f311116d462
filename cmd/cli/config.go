package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the persistent flags a config file can supply. yaml
// tags match the flag/viper key names so a file written by `config init`
// round-trips through the same keys bindFlags reconciles against.
type fileConfig struct {
	DB       string `yaml:"db"`
	Temp     string `yaml:"temp"`
	Rate     int    `yaml:"rate"`
	LogLevel string `yaml:"log-level"`
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or generate soundmark CLI configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write an example config file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := "config.yaml"
	if len(args) == 1 {
		path = args[0]
	}

	example := fileConfig{
		DB:       "soundmark.sqlite3",
		Temp:     os.TempDir(),
		Rate:     22050,
		LogLevel: "info",
	}

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("marshaling example config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Printf("wrote example config to %s\n", path)
	return nil
}
