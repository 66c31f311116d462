package audio

import (
	"os"
	"path/filepath"
	"testing"

	waveaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func writeTestWAV(t *testing.T, path string, channels, sampleRate int, data []int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating test wav: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	buf := &waveaudio.IntBuffer{
		Format:         &waveaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("writing test wav: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("closing test wav encoder: %v", err)
	}
}

func TestReadWAVMono(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.wav")
	writeTestWAV(t, path, 1, 22050, []int{0, 16384, -16384, 0})

	samples, rate, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV failed: %v", err)
	}
	if rate != 22050 {
		t.Errorf("expected sample rate 22050, got %d", rate)
	}
	if len(samples) != 4 {
		t.Fatalf("expected 4 samples, got %d", len(samples))
	}
	if samples[1] <= 0 || samples[2] >= 0 {
		t.Errorf("expected alternating sign samples, got %v", samples)
	}
}

func TestReadWAVStereoDownmix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	// L, R pairs: (16384, 16384) then (-16384, -16384) should average cleanly.
	writeTestWAV(t, path, 2, 22050, []int{16384, 16384, -16384, -16384})

	samples, _, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV failed: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 downmixed frames, got %d", len(samples))
	}
	if samples[0] <= 0 || samples[1] >= 0 {
		t.Errorf("expected downmix to preserve sign, got %v", samples)
	}
}

func TestPickArtistFallbackChain(t *testing.T) {
	cases := []struct {
		meta YTMetadata
		want string
	}{
		{YTMetadata{Artist: "Darude"}, "Darude"},
		{YTMetadata{Channel: "DarudeVEVO"}, "DarudeVEVO"},
		{YTMetadata{Uploader: "uploader1"}, "uploader1"},
		{YTMetadata{}, "Unknown Artist"},
	}
	for _, c := range cases {
		if got := pickArtist(c.meta); got != c.want {
			t.Errorf("pickArtist(%+v) = %q, want %q", c.meta, got, c.want)
		}
	}
}

func TestResampleNoOpWhenRatesMatch(t *testing.T) {
	samples := []float64{0.1, 0.2, -0.3}
	out, err := Resample(samples, 22050, 22050)
	if err != nil {
		t.Fatalf("Resample failed: %v", err)
	}
	if len(out) != len(samples) {
		t.Errorf("expected no-op resample to preserve length, got %d", len(out))
	}
}
