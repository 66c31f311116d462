// Package match implements the Matcher component: it turns a query's
// fingerprints and the Index Store's hits for them into ranked candidates
// via offset-histogram voting.
package match

import (
	"sort"

	"github.com/soundmark/soundmark/pkg/soundmark/model"
)

// Config mirrors the subset of soundmark.Config this package needs.
type Config struct {
	ScoreMin           int
	Margin             float64
	OffsetQuantization int
}

// Vote runs offset-histogram voting: for every query fingerprint, every
// stored hit for the same hash casts a vote for (track, offset), where
// offset = hit.AnchorTime - query.AnchorTime. The highest-scoring offset
// per track becomes that track's candidate.
func Vote(queryFPs []model.Fingerprint, hits map[uint32][]model.Hit, cfg Config) []model.Candidate {
	votes := make(map[model.TrackID]map[int]int)

	for _, fp := range queryFPs {
		bucket, ok := hits[fp.Hash]
		if !ok {
			continue
		}
		for _, hit := range bucket {
			offset := hit.AnchorTime - fp.AnchorTime
			if cfg.OffsetQuantization > 1 {
				offset = quantize(offset, cfg.OffsetQuantization)
			}
			byOffset, ok := votes[hit.Track]
			if !ok {
				byOffset = make(map[int]int)
				votes[hit.Track] = byOffset
			}
			byOffset[offset]++
		}
	}

	candidates := make([]model.Candidate, 0, len(votes))
	for track, byOffset := range votes {
		bestOffset, bestScore, total := 0, 0, 0
		for offset, score := range byOffset {
			total += score
			if score > bestScore {
				bestScore = score
				bestOffset = offset
			}
		}
		candidates = append(candidates, model.Candidate{Track: track, Score: bestScore, Offset: bestOffset, TotalMatches: total})
	}

	// Ties break first on total matched hashes across every offset, then on
	// track id, so the ranking is deterministic across runs.
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.TotalMatches != b.TotalMatches {
			return a.TotalMatches > b.TotalMatches
		}
		return a.Track < b.Track
	})

	for i := range candidates {
		if i+1 < len(candidates) && candidates[i+1].Score > 0 {
			candidates[i].Margin = float64(candidates[i].Score) / float64(candidates[i+1].Score)
		} else {
			candidates[i].Margin = float64(candidates[i].Score)
		}
	}

	return candidates
}

// Accept applies the acceptance rule to a ranked candidate list: the top
// candidate must clear ScoreMin, and either be the only candidate or lead
// the runner-up by at least Margin.
func Accept(candidates []model.Candidate, cfg Config) (model.Candidate, bool) {
	if len(candidates) == 0 {
		return model.Candidate{}, false
	}
	top := candidates[0]
	if top.Score < cfg.ScoreMin {
		return model.Candidate{}, false
	}
	if len(candidates) == 1 {
		return top, true
	}
	if top.Margin >= cfg.Margin {
		return top, true
	}
	return model.Candidate{}, false
}

func quantize(offset, q int) int {
	if offset >= 0 {
		return (offset / q) * q
	}
	return -(((-offset) / q) * q)
}
