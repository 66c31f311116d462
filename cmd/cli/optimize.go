package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Compact and reindex the underlying SQLite database",
	Args:  cobra.NoArgs,
	RunE:  runOptimize,
}

func init() {
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	engine, err := newEngine()
	if err != nil {
		return fmt.Errorf("initializing engine: %w", err)
	}
	defer engine.Close()

	if err := engine.Optimize(context.Background()); err != nil {
		return fmt.Errorf("optimizing index: %w", err)
	}

	fmt.Println("index optimized")
	return nil
}
