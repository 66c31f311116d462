package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/soundmark/soundmark/pkg/soundmark"
	"github.com/soundmark/soundmark/pkg/soundmark/audio"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	ingestTitle     string
	ingestArtist    string
	ingestYouTubeID string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <audio-file-or-youtube-url>",
	Short: "Add a track to the fingerprint index",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "track title (required for local files, inferred from YouTube metadata otherwise)")
	ingestCmd.Flags().StringVar(&ingestArtist, "artist", "", "artist name (required for local files, inferred from YouTube metadata otherwise)")
	ingestCmd.Flags().StringVar(&ingestYouTubeID, "youtube", "", "YouTube video ID (only meaningful for local files; auto-extracted for YouTube URLs)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	source := args[0]

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	engine, err := newEngine()
	if err != nil {
		return fmt.Errorf("initializing engine: %w", err)
	}
	defer engine.Close()

	req := soundmark.IngestRequest{
		Kind:      soundmark.FileSource,
		Source:    source,
		Title:     ingestTitle,
		Artist:    ingestArtist,
		YouTubeID: ingestYouTubeID,
	}

	if audio.IsYouTubeURL(source) {
		dec := audio.YouTubeDecoder{SampleRate: viper.GetInt("rate"), TempDir: viper.GetString("temp")}
		path, meta, err := dec.Fetch(ctx, source)
		if err != nil {
			return fmt.Errorf("fetching YouTube audio: %w", err)
		}
		defer os.Remove(path)
		req.Source = path
		if req.Title == "" {
			req.Title = meta.Title
		}
		if req.Artist == "" {
			req.Artist = meta.Artist
		}
		if req.YouTubeID == "" {
			req.YouTubeID = meta.ID
		}
	}

	if req.Title == "" || req.Artist == "" {
		return fmt.Errorf("--title and --artist are required")
	}

	trackID, err := engine.Ingest(ctx, req)
	if err != nil {
		return fmt.Errorf("ingesting track: %w", err)
	}

	fmt.Printf("added track %d: %q by %q\n", trackID, req.Title, req.Artist)
	if req.YouTubeID != "" {
		fmt.Printf("  youtube: https://youtube.com/watch?v=%s\n", req.YouTubeID)
	}
	return nil
}
