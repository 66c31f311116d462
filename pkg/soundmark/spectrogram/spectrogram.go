// Package spectrogram implements the Spectrogram Processor component: it
// turns mono PCM samples into a time-frequency magnitude matrix in
// decibels, ready for peak extraction.
package spectrogram

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FFTReal computes the DFT of a real-valued frame.
func FFTReal(frame []float64) []complex128 {
	return fft.FFTReal(frame)
}

// MagnitudeSpectrum returns the magnitude of the lower half of a spectrum,
// DC through the Nyquist bin (N/2+1 values; the upper half is the mirror
// image for a real input).
func MagnitudeSpectrum(spectrum []complex128) []float64 {
	half := len(spectrum)/2 + 1
	mag := make([]float64, half)
	for i := 0; i < half; i++ {
		mag[i] = cmplx.Abs(spectrum[i])
	}
	return mag
}

// STFT computes the short-time Fourier transform of samples, returning one
// magnitude row per frame. The final partial frame, if any, is zero-padded
// rather than dropped.
func STFT(samples []float64, windowSize, hopLength int, window []float64) ([][]float64, error) {
	if len(window) != windowSize {
		return nil, errors.New("spectrogram: window length must equal windowSize")
	}
	if len(samples) < windowSize {
		return nil, errors.New("spectrogram: input shorter than window size")
	}

	var frames [][]float64
	for start := 0; start < len(samples); start += hopLength {
		end := start + windowSize
		frame := make([]float64, windowSize)
		if end <= len(samples) {
			copy(frame, samples[start:end])
		} else {
			copy(frame, samples[start:])
		}
		for i := range frame {
			frame[i] *= window[i]
		}
		mag := MagnitudeSpectrum(FFTReal(frame))
		frames = append(frames, mag)

		if end >= len(samples) {
			break
		}
	}
	return frames, nil
}

// Config mirrors the subset of soundmark.Config this package needs,
// avoiding an import cycle with the root package.
type Config struct {
	FFTSize   int
	HopLength int
	DBFloor   float64
}

// Compute runs STFT over samples and converts the magnitude matrix to a
// decibel scale: magnitudes are normalized against the loudest bin in the
// whole clip, then converted with 20*log10 and clamped to [DBFloor, 0].
// Normalizing before clamping (rather than clamping raw dB values) keeps
// the floor meaningful for quiet recordings.
func Compute(samples []float64, cfg Config) ([][]float64, error) {
	window := Hann(cfg.FFTSize)
	mag, err := STFT(samples, cfg.FFTSize, cfg.HopLength, window)
	if err != nil {
		return nil, err
	}
	return toDB(mag, cfg.DBFloor), nil
}

func toDB(mag [][]float64, floor float64) [][]float64 {
	const eps = 1e-10

	peak := eps
	for _, row := range mag {
		for _, v := range row {
			if v > peak {
				peak = v
			}
		}
	}

	db := make([][]float64, len(mag))
	for i, row := range mag {
		out := make([]float64, len(row))
		for j, v := range row {
			d := 20 * math.Log10(math.Max(v/peak, eps))
			if d < floor {
				d = floor
			}
			out[j] = d
		}
		db[i] = out
	}
	return db
}
