package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
)

// ProbeMetadata is the result of sniffing a file's container tags with
// ffprobe. It is an ingest-time convenience only: callers may use it to
// default Title/Artist when not supplied, but it is never a matching
// signal.
type ProbeMetadata struct {
	Title      string
	Artist     string
	DurationMs int
}

type ffprobeFormat struct {
	Duration string            `json:"duration"`
	Tags     map[string]string `json:"tags"`
}

type ffprobeOutput struct {
	Format ffprobeFormat `json:"format"`
}

// Probe runs ffprobe against path and extracts title/artist tags and
// duration, when present.
func Probe(ctx context.Context, path string) (ProbeMetadata, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return ProbeMetadata{}, fmt.Errorf("audio: ffprobe failed: %w", err)
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return ProbeMetadata{}, fmt.Errorf("audio: parsing ffprobe output: %w", err)
	}

	meta := ProbeMetadata{
		Title:  parsed.Format.Tags["title"],
		Artist: parsed.Format.Tags["artist"],
	}
	if d, err := strconv.ParseFloat(parsed.Format.Duration, 64); err == nil {
		meta.DurationMs = int(d * 1000)
	}
	return meta, nil
}
