package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print index size and contents summary",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	engine, err := newEngine()
	if err != nil {
		return fmt.Errorf("initializing engine: %w", err)
	}
	defer engine.Close()

	stats, err := engine.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("fetching stats: %w", err)
	}

	fmt.Printf("tracks:       %d\n", stats.TrackCount)
	fmt.Printf("fingerprints: %d\n", stats.FingerprintCount)
	fmt.Printf("index size:   %s\n", humanize.Bytes(uint64(stats.SizeBytes)))
	return nil
}
