package spectrogram

import "testing"

func TestHann(t *testing.T) {
	sizes := []int{128, 256, 512, 1024}

	for _, size := range sizes {
		window := Hann(size)

		if len(window) != size {
			t.Errorf("expected window size %d, got %d", size, len(window))
		}

		for i, val := range window {
			if val < 0 || val > 1 {
				t.Errorf("window value %d out of range [0,1]: %f", i, val)
			}
		}

		if window[0] >= window[size/2] {
			t.Error("Hann window should be lower at edges than at center")
		}
	}
}

func TestFFTReal(t *testing.T) {
	signal := make([]float64, 128)
	for i := range signal {
		signal[i] = 1.0 // DC signal
	}

	spectrum := FFTReal(signal)
	if len(spectrum) != len(signal) {
		t.Errorf("expected spectrum length %d, got %d", len(signal), len(spectrum))
	}
}

func TestMagnitudeSpectrum(t *testing.T) {
	spectrum := []complex128{
		complex(1.0, 0.0),
		complex(0.0, 1.0),
		complex(3.0, 4.0),
		complex(0.0, 0.0),
	}

	mag := MagnitudeSpectrum(spectrum)

	expectedLen := len(spectrum)/2 + 1
	if len(mag) != expectedLen {
		t.Errorf("expected magnitude length %d, got %d", expectedLen, len(mag))
	}
	if mag[0] != 1.0 {
		t.Errorf("expected magnitude 1.0, got %f", mag[0])
	}
	if mag[1] != 1.0 {
		t.Errorf("expected magnitude 1.0, got %f", mag[1])
	}
}

func TestSTFT(t *testing.T) {
	windowSize := 128
	hopLength := 64
	samples := make([]float64, 11025) // 1 second of silence at 11025 Hz
	window := Hann(windowSize)

	frames, err := STFT(samples, windowSize, hopLength, window)
	if err != nil {
		t.Fatalf("STFT failed: %v", err)
	}
	if len(frames) == 0 {
		t.Error("empty spectrogram")
	}

	expectedFrames := (len(samples)-windowSize)/hopLength + 1
	if len(frames) < expectedFrames-1 || len(frames) > expectedFrames+1 {
		t.Logf("expected ~%d frames, got %d", expectedFrames, len(frames))
	}

	expectedBins := windowSize/2 + 1
	if len(frames[0]) != expectedBins {
		t.Errorf("expected %d frequency bins, got %d", expectedBins, len(frames[0]))
	}
}

func TestSTFTInvalidInput(t *testing.T) {
	windowSize := 128
	hopLength := 64

	samples := make([]float64, 50)
	window := Hann(windowSize)
	if _, err := STFT(samples, windowSize, hopLength, window); err == nil {
		t.Error("expected error with samples shorter than window")
	}

	samples = make([]float64, 1000)
	wrongWindow := Hann(64)
	if _, err := STFT(samples, windowSize, hopLength, wrongWindow); err == nil {
		t.Error("expected error with mismatched window size")
	}
}

func TestCompute(t *testing.T) {
	samples := make([]float64, 22050)
	for i := range samples {
		samples[i] = 0.5
	}

	db, err := Compute(samples, Config{FFTSize: 2048, HopLength: 512, DBFloor: -80})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if len(db) == 0 {
		t.Fatal("empty spectrogram")
	}

	expectedBins := 2048/2 + 1
	if len(db[0]) != expectedBins {
		t.Errorf("expected %d bins, got %d", expectedBins, len(db[0]))
	}

	for _, row := range db {
		for _, v := range row {
			if v > 0 || v < -80 {
				t.Errorf("dB value %f outside [-80, 0]", v)
			}
		}
	}
}
