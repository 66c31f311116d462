package audio

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// Resample converts samples from srcRate to dstRate using a band-limited,
// pure-Go resampler. Decoders may produce audio at whatever rate their
// source carries; the engine always analyzes at its configured canonical
// rate, so every decoder path runs its output through this before handing
// samples to the spectrogram processor.
func Resample(samples []float64, srcRate, dstRate int) ([]float64, error) {
	if srcRate == dstRate {
		return samples, nil
	}

	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(srcRate),
		OutputRate: float64(dstRate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("audio: creating resampler: %w", err)
	}

	out, err := rs.Process(samples)
	if err != nil {
		return nil, fmt.Errorf("audio: resampling: %w", err)
	}
	return out, nil
}
