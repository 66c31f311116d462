package spectrogram

import "math"

// Hann returns an n-point Hann window. Constellation fingerprinting needs
// a window with low spectral leakage at the band edges; Hann is the
// standard choice for STFT-based peak picking.
func Hann(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := 0; i < n; i++ {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}
