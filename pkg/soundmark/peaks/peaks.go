// Package peaks implements the Peak Extractor component: it scans a
// decibel spectrogram for local maxima that stand out from their
// neighborhood, forming the constellation map fingerprints are built from.
package peaks

import (
	"math"
	"sort"
)

// Peak is one constellation point.
type Peak struct {
	TimeIdx int
	FreqIdx int
	Time    float64 // seconds
	Freq    float64 // Hz
	MagDB   float64
}

// Config mirrors the subset of soundmark.Config this package needs.
type Config struct {
	SampleRate        int
	FFTSize           int
	HopLength         int
	FreqNeighborhood  int
	TimeNeighborhood  int
	ThresholdSigma    float64
	PeaksPerSecondCap int
}

// Extract scans a decibel spectrogram (as produced by spectrogram.Compute)
// for local maxima. A bin is a peak if it is the largest value in its
// (2*FreqNeighborhood+1) x (2*TimeNeighborhood+1) window (among equal
// values, only the one with the smallest (frequency, time) index counts)
// and it lies strictly above an adaptive per-frame threshold of
// mean+ThresholdSigma*stddev, so a flat frame yields no peaks. The result is
// capped to PeaksPerSecondCap*duration peaks, keeping the loudest when the
// cap is exceeded.
func Extract(db [][]float64, cfg Config) []Peak {
	if len(db) == 0 || len(db[0]) == 0 {
		return nil
	}

	nFrames := len(db)
	nBins := len(db[0])
	freqRes := float64(cfg.SampleRate) / float64(cfg.FFTSize)
	frameTime := float64(cfg.HopLength) / float64(cfg.SampleRate)

	means, stddevs := frameStats(db)

	var candidates []Peak
	for t := 0; t < nFrames; t++ {
		threshold := means[t] + cfg.ThresholdSigma*stddevs[t]
		row := db[t]
		for f := 0; f < nBins; f++ {
			v := row[f]
			if v <= threshold {
				continue
			}
			if !isLocalMax(db, t, f, cfg.TimeNeighborhood, cfg.FreqNeighborhood) {
				continue
			}
			candidates = append(candidates, Peak{
				TimeIdx: t,
				FreqIdx: f,
				Time:    float64(t) * frameTime,
				Freq:    float64(f) * freqRes,
				MagDB:   v,
			})
		}
	}

	candidates = capPeaks(candidates, nFrames, frameTime, cfg.PeaksPerSecondCap)

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].TimeIdx == candidates[j].TimeIdx {
			return candidates[i].FreqIdx < candidates[j].FreqIdx
		}
		return candidates[i].TimeIdx < candidates[j].TimeIdx
	})

	return candidates
}

func frameStats(db [][]float64) (means, stddevs []float64) {
	means = make([]float64, len(db))
	stddevs = make([]float64, len(db))
	for t, row := range db {
		var sum float64
		for _, v := range row {
			sum += v
		}
		mean := sum / float64(len(row))

		var variance float64
		for _, v := range row {
			d := v - mean
			variance += d * d
		}
		variance /= float64(len(row))

		means[t] = mean
		stddevs[t] = math.Sqrt(variance)
	}
	return means, stddevs
}

func isLocalMax(db [][]float64, t, f, timeNeighborhood, freqNeighborhood int) bool {
	v := db[t][f]
	nFrames := len(db)
	nBins := len(db[0])

	for dt := -timeNeighborhood; dt <= timeNeighborhood; dt++ {
		ti := t + dt
		if ti < 0 || ti >= nFrames {
			continue
		}
		for df := -freqNeighborhood; df <= freqNeighborhood; df++ {
			fi := f + df
			if fi < 0 || fi >= nBins {
				continue
			}
			if dt == 0 && df == 0 {
				continue
			}
			if db[ti][fi] > v {
				return false
			}
			// Ties go to the lexicographically smallest (f, t).
			if db[ti][fi] == v && (fi < f || (fi == f && ti < t)) {
				return false
			}
		}
	}
	return true
}

// capPeaks enforces a global density cap, keeping the loudest peaks when
// the raw candidate count exceeds it.
func capPeaks(candidates []Peak, nFrames int, frameTime float64, perSecondCap int) []Peak {
	if perSecondCap <= 0 {
		return candidates
	}
	duration := float64(nFrames) * frameTime
	cap := int(duration * float64(perSecondCap))
	if cap <= 0 {
		cap = perSecondCap
	}
	if len(candidates) <= cap {
		return candidates
	}

	sorted := make([]Peak, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MagDB > sorted[j].MagDB })
	return sorted[:cap]
}
