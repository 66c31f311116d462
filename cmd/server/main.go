//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/soundmark/soundmark/internal/httpapi"
	"github.com/soundmark/soundmark/pkg/soundmark"
	"github.com/soundmark/soundmark/pkg/soundmark/logging"
)

var (
	port           int
	dbPath         string
	tempDir        string
	sampleRate     int
	allowedOrigins string
)

func init() {
	flag.IntVar(&port, "port", 8080, "HTTP server port")
	flag.StringVar(&dbPath, "db", getEnvOrDefault("SOUNDMARK_DB_PATH", "soundmark.sqlite3"), "path to the SQLite index")
	flag.StringVar(&tempDir, "temp", getEnvOrDefault("SOUNDMARK_TEMP_DIR", os.TempDir()), "temporary directory for uploads and downloads")
	flag.IntVar(&sampleRate, "rate", 22050, "canonical audio sample rate")
	flag.StringVar(&allowedOrigins, "origins", "*", "comma-separated list of allowed CORS origins (use * for all)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	flag.Parse()

	var origins []string
	if allowedOrigins == "*" {
		origins = []string{"*"}
	} else {
		origins = strings.Split(allowedOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}

	log := logging.Default()
	defer log.Sync()

	engine, err := soundmark.New(
		soundmark.WithStoragePath(dbPath),
		soundmark.WithSampleRate(sampleRate),
		soundmark.WithLogger(log),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	config := &httpapi.ServerConfig{
		Port:           port,
		DBPath:         dbPath,
		TempDir:        tempDir,
		SampleRate:     sampleRate,
		AllowedOrigins: origins,
	}

	server := httpapi.NewServer(engine, log, config)
	if err := server.Start(); err != nil {
		log.Errorf("server failed: %v", err)
		os.Exit(1)
	}
}
