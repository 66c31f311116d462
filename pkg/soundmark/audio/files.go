package audio

import (
	"fmt"
	"os"
)

// ensureDir creates dir and any missing parents, used before every decoder
// writes a downloaded or converted file into its temp directory.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("audio: creating directory %s: %w", dir, err)
	}
	return nil
}

// moveFile renames src to dst, the usual way a decoder publishes a finished
// conversion under its final path once the temporary write succeeds.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("audio: moving %s to %s: %w", src, dst, err)
	}
	return nil
}
