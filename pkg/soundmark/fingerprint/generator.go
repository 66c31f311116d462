// Package fingerprint implements the Fingerprint Generator component: it
// pairs constellation peaks into anchor/target couples and packs each pair
// into a hash suitable for index lookup.
package fingerprint

import (
	"sort"

	"github.com/soundmark/soundmark/pkg/soundmark/model"
	"github.com/soundmark/soundmark/pkg/soundmark/peaks"
)

// Fingerprint is one (hash, anchor-time) pair produced for a single track
// or query.
type Fingerprint = model.Fingerprint

// TargetZone bounds how far ahead of an anchor a target peak may be paired,
// in STFT frames.
type TargetZone struct {
	Min int
	Max int
}

// Config mirrors the subset of soundmark.Config this package needs.
type Config struct {
	FanValue   int
	TargetZone TargetZone
	Bits       Bitwidths
	// Robust enables a second fingerprinting pass with a reduced fan-out
	// and an extended target zone, merged with the standard pass and
	// deduplicated. It trades index size for resilience against small
	// timing perturbations between the query and the reference recording.
	Robust bool
}

// Generate produces the fingerprints for a sorted-by-time set of peaks.
// Peaks need not be pre-sorted; Generate sorts a copy.
func Generate(pts []peaks.Peak, cfg Config) []Fingerprint {
	sorted := make([]peaks.Peak, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].TimeIdx < sorted[j].TimeIdx })

	fps := pair(sorted, cfg.FanValue, cfg.TargetZone, cfg.Bits)

	if !cfg.Robust {
		return fps
	}

	reducedFan := cfg.FanValue / 2
	if reducedFan < 2 {
		reducedFan = 2
	}
	extended := TargetZone{Min: cfg.TargetZone.Min, Max: cfg.TargetZone.Max + 5}
	second := pair(sorted, reducedFan, extended, cfg.Bits)

	return dedupe(append(fps, second...))
}

// pair implements the standard constellation pairing rule: for each
// anchor, take up to fanValue subsequent peaks within the target zone,
// ordered by ascending time then ascending frequency distance from the
// anchor.
func pair(sorted []peaks.Peak, fanValue int, zone TargetZone, bits Bitwidths) []Fingerprint {
	var fps []Fingerprint

	for i, anchor := range sorted {
		var candidates []peaks.Peak
		for j := i + 1; j < len(sorted); j++ {
			target := sorted[j]
			delta := target.TimeIdx - anchor.TimeIdx
			if delta < zone.Min {
				continue
			}
			if delta > zone.Max {
				break // sorted by time, nothing further can fall in the zone
			}
			candidates = append(candidates, target)
		}

		sort.SliceStable(candidates, func(a, b int) bool {
			da := candidates[a].TimeIdx - anchor.TimeIdx
			db := candidates[b].TimeIdx - anchor.TimeIdx
			if da != db {
				return da < db
			}
			return absInt(candidates[a].FreqIdx-anchor.FreqIdx) < absInt(candidates[b].FreqIdx-anchor.FreqIdx)
		})

		n := fanValue
		if n > len(candidates) {
			n = len(candidates)
		}
		for _, target := range candidates[:n] {
			delta := target.TimeIdx - anchor.TimeIdx
			hash, ok := Pack(anchor.FreqIdx, target.FreqIdx, delta, bits)
			if !ok {
				continue
			}
			fps = append(fps, Fingerprint{Hash: hash, AnchorTime: anchor.TimeIdx})
		}
	}

	return fps
}

func dedupe(fps []Fingerprint) []Fingerprint {
	seen := make(map[Fingerprint]struct{}, len(fps))
	out := make([]Fingerprint, 0, len(fps))
	for _, fp := range fps {
		if _, ok := seen[fp]; ok {
			continue
		}
		seen[fp] = struct{}{}
		out = append(out, fp)
	}
	return out
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
