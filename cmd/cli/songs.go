package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/soundmark/soundmark/pkg/soundmark"
	"github.com/spf13/cobra"
)

var tracksCmd = &cobra.Command{
	Use:   "tracks",
	Short: "Inspect and manage tracks in the index",
}

var tracksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every track in the index",
	Args:  cobra.NoArgs,
	RunE:  runTracksList,
}

var tracksRmCmd = &cobra.Command{
	Use:   "rm <track-id>",
	Short: "Delete a track from the index",
	Args:  cobra.ExactArgs(1),
	RunE:  runTracksRm,
}

func init() {
	tracksCmd.AddCommand(tracksListCmd)
	tracksCmd.AddCommand(tracksRmCmd)
	rootCmd.AddCommand(tracksCmd)
}

func runTracksList(cmd *cobra.Command, args []string) error {
	engine, err := newEngine()
	if err != nil {
		return fmt.Errorf("initializing engine: %w", err)
	}
	defer engine.Close()

	tracks, err := engine.ListTracks(context.Background())
	if err != nil {
		return fmt.Errorf("listing tracks: %w", err)
	}

	if len(tracks) == 0 {
		fmt.Println("no tracks in index")
		return nil
	}

	for _, t := range tracks {
		fmt.Printf("%d. %q by %q", t.ID, t.Title, t.Artist)
		if t.YouTubeID != "" {
			fmt.Printf(" [youtube:%s]", t.YouTubeID)
		}
		if t.DurationMs > 0 {
			secs := t.DurationMs / 1000
			fmt.Printf(" (%d:%02d)", secs/60, secs%60)
		}
		fmt.Println()
	}
	return nil
}

func runTracksRm(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid track id %q: %w", args[0], err)
	}

	engine, err := newEngine()
	if err != nil {
		return fmt.Errorf("initializing engine: %w", err)
	}
	defer engine.Close()

	ctx := context.Background()
	track, err := engine.GetTrack(ctx, soundmark.TrackID(id))
	if err != nil {
		return fmt.Errorf("track %d not found: %w", id, err)
	}

	if err := engine.DeleteTrack(ctx, soundmark.TrackID(id)); err != nil {
		return fmt.Errorf("deleting track %d: %w", id, err)
	}

	fmt.Printf("deleted track %d: %q by %q\n", track.ID, track.Title, track.Artist)
	return nil
}
