package audio

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ReadWAV reads a PCM WAV file and returns mono samples normalized to
// [-1, 1], along with the file's sample rate. Stereo files are downmixed
// by averaging channels.
func ReadWAV(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("audio: opening wav file: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, 0, errors.New("audio: not a valid WAV file")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("audio: reading PCM buffer: %w", err)
	}

	samples, err := downmix(buf)
	if err != nil {
		return nil, 0, err
	}

	return samples, int(decoder.SampleRate), nil
}

func downmix(buf *audio.IntBuffer) ([]float64, error) {
	channels := buf.Format.NumChannels
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("audio: unsupported channel count %d, only mono/stereo supported", channels)
	}

	scale := 1.0 / float64(int(1)<<(uint(buf.SourceBitDepth)-1))

	if channels == 1 {
		out := make([]float64, len(buf.Data))
		for i, v := range buf.Data {
			out[i] = float64(v) * scale
		}
		return out, nil
	}

	frames := len(buf.Data) / 2
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		l := float64(buf.Data[2*i]) * scale
		r := float64(buf.Data[2*i+1]) * scale
		out[i] = (l + r) * 0.5
	}
	return out, nil
}
