package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// FileDecoder decodes an arbitrary local audio file by shelling out to
// ffmpeg to produce mono 16-bit PCM WAV, then reading that WAV back with
// ReadWAV. ffmpeg is the only tool in the reference corpus that handles
// the breadth of input codecs a real ingest pipeline sees, so this keeps
// the subprocess approach rather than reimplementing format demuxing.
type FileDecoder struct {
	SampleRate int
	TempDir    string
	Timeout    time.Duration // default 10s
}

func (d FileDecoder) Decode(ctx context.Context, source string) ([]float64, int, error) {
	rate := d.SampleRate
	if rate == 0 {
		rate = 22050
	}
	timeout := d.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	tempDir := d.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := ensureDir(tempDir); err != nil {
		return nil, 0, err
	}

	outPath := filepath.Join(tempDir, filepath.Base(source)+".conv.wav")
	tmpPath := outPath + ".tmp"
	defer os.Remove(tmpPath)

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y", "-v", "quiet",
		"-i", source,
		"-ac", "1",
		"-ar", fmt.Sprintf("%d", rate),
		"-c:a", "pcm_s16le",
		tmpPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, fmt.Errorf("audio: ffmpeg conversion failed: %w (%s)", err, out)
	}

	if err := moveFile(tmpPath, outPath); err != nil {
		return nil, 0, err
	}
	defer os.Remove(outPath)

	return ReadWAV(outPath)
}
