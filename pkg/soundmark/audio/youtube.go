package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
)

// YTMetadata carries the subset of yt-dlp's metadata JSON the ingest path
// cares about.
type YTMetadata struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Uploader string  `json:"uploader"`
	Channel  string  `json:"channel"`
	Duration float64 `json:"duration"`
}

func pickArtist(meta YTMetadata) string {
	if strings.TrimSpace(meta.Artist) != "" {
		return meta.Artist
	}
	if strings.TrimSpace(meta.Channel) != "" {
		return meta.Channel
	}
	if strings.TrimSpace(meta.Uploader) != "" {
		return meta.Uploader
	}
	return "Unknown Artist"
}

// YouTubeDecoder downloads a video's best audio stream via the go-ytdlp
// library, converts it to mono WAV with FileDecoder, and decodes that.
type YouTubeDecoder struct {
	SampleRate int
	TempDir    string
}

// Fetch downloads source (a YouTube URL) and returns the local path to the
// downloaded audio plus its metadata. Decode (below) wraps this with WAV
// conversion to satisfy the Decoder interface end to end.
func (d YouTubeDecoder) Fetch(ctx context.Context, source string) (path string, meta YTMetadata, err error) {
	tempDir := d.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 3*time.Minute)
		defer cancel()
	}
	if err := ensureDir(tempDir); err != nil {
		return "", YTMetadata{}, err
	}

	probe := ytdlp.New().
		DumpJSON().
		NoWarnings().
		NoPlaylist()

	result, err := probe.Run(ctx, source)
	if err != nil {
		return "", YTMetadata{}, fmt.Errorf("audio: yt-dlp metadata fetch failed: %w", err)
	}

	var ytMeta YTMetadata
	if err := json.Unmarshal([]byte(result.Stdout), &ytMeta); err != nil {
		return "", YTMetadata{}, fmt.Errorf("audio: parsing yt-dlp metadata: %w", err)
	}
	if strings.TrimSpace(ytMeta.ID) == "" || strings.TrimSpace(ytMeta.Title) == "" {
		return "", YTMetadata{}, fmt.Errorf("audio: yt-dlp metadata missing id/title")
	}
	if ytMeta.Artist == "" {
		ytMeta.Artist = pickArtist(ytMeta)
	}

	outputTemplate := filepath.Join(tempDir, ytMeta.ID+".%(ext)s")
	download := ytdlp.New().
		FormatSort("ba").
		NoWarnings().
		NoPlaylist().
		Output(outputTemplate)

	if _, err := download.Run(ctx, source); err != nil {
		return "", YTMetadata{}, fmt.Errorf("audio: yt-dlp download failed: %w", err)
	}

	for _, ext := range []string{".m4a", ".webm", ".opus", ".mp3", ".aac", ".ogg"} {
		candidate := filepath.Join(tempDir, ytMeta.ID+ext)
		if _, statErr := os.Stat(candidate); statErr == nil {
			return candidate, ytMeta, nil
		}
	}
	return "", YTMetadata{}, fmt.Errorf("audio: downloaded file for %s not found", ytMeta.ID)
}

func (d YouTubeDecoder) Decode(ctx context.Context, source string) ([]float64, int, error) {
	downloaded, _, err := d.Fetch(ctx, source)
	if err != nil {
		return nil, 0, err
	}
	fd := FileDecoder{SampleRate: d.SampleRate, TempDir: d.TempDir}
	return fd.Decode(ctx, downloaded)
}

// IsYouTubeURL reports whether urlStr names a youtube.com or youtu.be host,
// the signal an ingest path uses to route a source through YouTubeDecoder
// instead of FileDecoder.
func IsYouTubeURL(urlStr string) bool {
	u, err := url.Parse(urlStr)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Host)
	return strings.Contains(host, "youtube.com") || strings.Contains(host, "youtu.be")
}

// ExtractYouTubeID pulls the video ID out of a youtube.com or youtu.be URL,
// covering /watch?v=, youtu.be/<id>, /embed/<id>, and /v/<id> forms. Fetch's
// own metadata lookup supplies the ID directly; this exists for callers that
// only have the original URL on hand.
func ExtractYouTubeID(youtubeURL string) (string, error) {
	u, err := url.Parse(youtubeURL)
	if err != nil {
		return "", fmt.Errorf("audio: invalid YouTube URL: %w", err)
	}

	if strings.Contains(u.Host, "youtu.be") {
		id := strings.TrimPrefix(u.Path, "/")
		if idx := strings.Index(id, "?"); idx != -1 {
			id = id[:idx]
		}
		if id != "" {
			return id, nil
		}
		return "", fmt.Errorf("audio: no video ID found in youtu.be URL")
	}

	if strings.Contains(u.Host, "youtube.com") {
		if u.Path == "/watch" || strings.HasPrefix(u.Path, "/watch") {
			if videoID := u.Query().Get("v"); videoID != "" {
				return videoID, nil
			}
		}
		if strings.HasPrefix(u.Path, "/embed/") {
			if id := strings.TrimPrefix(u.Path, "/embed/"); id != "" {
				return id, nil
			}
		}
		if strings.HasPrefix(u.Path, "/v/") {
			if id := strings.TrimPrefix(u.Path, "/v/"); id != "" {
				return id, nil
			}
		}
	}

	return "", fmt.Errorf("audio: unable to extract video ID from URL: %s", youtubeURL)
}
