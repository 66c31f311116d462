package main

import (
	"fmt"
	"strings"

	"github.com/soundmark/soundmark/internal/httpapi"
	"github.com/soundmark/soundmark/pkg/soundmark/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	servePort    int
	serveOrigins string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP identification API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "HTTP server port")
	serveCmd.Flags().StringVar(&serveOrigins, "origins", "*", "comma-separated list of allowed CORS origins (use * for all)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	var origins []string
	if serveOrigins == "*" {
		origins = []string{"*"}
	} else {
		for _, o := range strings.Split(serveOrigins, ",") {
			origins = append(origins, strings.TrimSpace(o))
		}
	}

	log := logging.Default()
	defer log.Sync()

	engine, err := newEngine()
	if err != nil {
		return fmt.Errorf("initializing engine: %w", err)
	}
	defer engine.Close()

	config := &httpapi.ServerConfig{
		Port:           servePort,
		DBPath:         viper.GetString("db"),
		TempDir:        viper.GetString("temp"),
		SampleRate:     viper.GetInt("rate"),
		AllowedOrigins: origins,
	}

	server := httpapi.NewServer(engine, log, config)
	return server.Start()
}
