package main

import (
	"context"
	"fmt"
	"time"

	"github.com/soundmark/soundmark/pkg/soundmark"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var identifyCmd = &cobra.Command{
	Use:   "identify <audio-file>",
	Short: "Identify a clip against the fingerprint index",
	Args:  cobra.ExactArgs(1),
	RunE:  runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)
}

func runIdentify(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	engine, err := newEngine()
	if err != nil {
		return fmt.Errorf("initializing engine: %w", err)
	}
	defer engine.Close()

	candidates, err := engine.Identify(ctx, soundmark.IdentifyRequest{
		Kind:       soundmark.FileSource,
		Source:     args[0],
		SampleRate: viper.GetInt("rate"),
	})
	if err != nil {
		return fmt.Errorf("identifying clip: %w", err)
	}

	if len(candidates) == 0 {
		fmt.Println("no match found")
		return nil
	}

	top := candidates[0]
	track, err := engine.GetTrack(ctx, top.Track)
	if err != nil {
		return fmt.Errorf("fetching matched track: %w", err)
	}

	fmt.Printf("matched: %q by %q (track %d)\n", track.Title, track.Artist, track.ID)
	fmt.Printf("  score: %d  margin: %.2f  confidence: %.1f%%  offset: %d frames\n",
		top.Score, top.Margin, top.Confidence, top.Offset)
	if track.YouTubeID != "" {
		fmt.Printf("  youtube: https://youtube.com/watch?v=%s\n", track.YouTubeID)
	}
	return nil
}
