package peaks

import "testing"

func flatSpectrogram(frames, bins int, fill float64) [][]float64 {
	db := make([][]float64, frames)
	for i := range db {
		db[i] = make([]float64, bins)
		for j := range db[i] {
			db[i][j] = fill
		}
	}
	return db
}

func TestExtractNoPeaksInSilence(t *testing.T) {
	db := flatSpectrogram(50, 128, -80)
	cfg := Config{SampleRate: 22050, FFTSize: 2048, HopLength: 512, FreqNeighborhood: 10, TimeNeighborhood: 10, ThresholdSigma: 0.5, PeaksPerSecondCap: 30}

	got := Extract(db, cfg)
	if len(got) != 0 {
		t.Errorf("expected no peaks in a flat spectrogram, got %d", len(got))
	}
}

func TestExtractFindsIsolatedPeak(t *testing.T) {
	db := flatSpectrogram(50, 128, -80)
	db[25][64] = -10

	cfg := Config{SampleRate: 22050, FFTSize: 2048, HopLength: 512, FreqNeighborhood: 10, TimeNeighborhood: 10, ThresholdSigma: 0.5, PeaksPerSecondCap: 30}
	got := Extract(db, cfg)

	if len(got) != 1 {
		t.Fatalf("expected exactly 1 peak, got %d", len(got))
	}
	if got[0].TimeIdx != 25 || got[0].FreqIdx != 64 {
		t.Errorf("expected peak at (25,64), got (%d,%d)", got[0].TimeIdx, got[0].FreqIdx)
	}
}

func TestExtractRespectsDensityCap(t *testing.T) {
	db := flatSpectrogram(100, 256, -80)
	// Scatter many isolated loud bins, spaced to each be a local max.
	for t := 2; t < 98; t += 3 {
		for f := 2; f < 250; f += 25 {
			db[t][f] = -5
		}
	}

	cfg := Config{SampleRate: 22050, FFTSize: 2048, HopLength: 512, FreqNeighborhood: 1, TimeNeighborhood: 1, ThresholdSigma: 0.5, PeaksPerSecondCap: 5}
	got := Extract(db, cfg)

	frameTime := float64(cfg.HopLength) / float64(cfg.SampleRate)
	duration := float64(len(db)) * frameTime
	maxExpected := int(duration*float64(cfg.PeaksPerSecondCap)) + 1

	if len(got) > maxExpected {
		t.Errorf("expected at most ~%d peaks under the density cap, got %d", maxExpected, len(got))
	}
}

func TestExtractEmptySpectrogram(t *testing.T) {
	if got := Extract(nil, Config{}); got != nil {
		t.Errorf("expected nil for empty spectrogram, got %v", got)
	}
}
