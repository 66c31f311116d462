package match

import (
	"testing"

	"github.com/soundmark/soundmark/pkg/soundmark/model"
)

func TestVoteAccumulatesConsistentOffset(t *testing.T) {
	query := []model.Fingerprint{
		{Hash: 1, AnchorTime: 0},
		{Hash: 2, AnchorTime: 5},
		{Hash: 3, AnchorTime: 10},
	}
	hits := map[uint32][]model.Hit{
		1: {{Track: 42, AnchorTime: 100}},
		2: {{Track: 42, AnchorTime: 105}},
		3: {{Track: 42, AnchorTime: 110}},
	}

	candidates := Vote(query, hits, Config{ScoreMin: 1, Margin: 1.0})
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].Track != 42 {
		t.Errorf("expected track 42, got %d", candidates[0].Track)
	}
	if candidates[0].Score != 3 {
		t.Errorf("expected score 3 (all offsets align at 100), got %d", candidates[0].Score)
	}
	if candidates[0].Offset != 100 {
		t.Errorf("expected offset 100, got %d", candidates[0].Offset)
	}
}

func TestVoteRanksMultipleTracks(t *testing.T) {
	query := []model.Fingerprint{{Hash: 1, AnchorTime: 0}}
	hits := map[uint32][]model.Hit{
		1: {
			{Track: 1, AnchorTime: 10},
			{Track: 2, AnchorTime: 10},
			{Track: 2, AnchorTime: 10},
		},
	}

	// Two distinct query fingerprints both hitting track 2 gives it a
	// higher score than track 1.
	query = append(query, model.Fingerprint{Hash: 2, AnchorTime: 3})
	hits[2] = []model.Hit{{Track: 2, AnchorTime: 13}}

	candidates := Vote(query, hits, Config{ScoreMin: 1, Margin: 1.0})
	if len(candidates) == 0 {
		t.Fatal("expected at least one candidate")
	}
	if candidates[0].Track != 2 {
		t.Errorf("expected track 2 to rank first, got %d", candidates[0].Track)
	}
}

func TestVoteBreaksScoreTiesByTotalMatchesThenTrackID(t *testing.T) {
	// Track 5 and track 2 both peak at score 2, but track 5 accumulates more
	// total votes across its other offsets, so it must rank first.
	query := []model.Fingerprint{
		{Hash: 1, AnchorTime: 0},
		{Hash: 2, AnchorTime: 0},
		{Hash: 3, AnchorTime: 0},
	}
	hits := map[uint32][]model.Hit{
		1: {{Track: 5, AnchorTime: 10}, {Track: 2, AnchorTime: 10}},
		2: {{Track: 5, AnchorTime: 10}, {Track: 2, AnchorTime: 10}},
		3: {{Track: 5, AnchorTime: 99}},
	}

	candidates := Vote(query, hits, Config{ScoreMin: 1, Margin: 1.0})
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].Score != candidates[1].Score {
		t.Fatalf("expected a score tie, got %d and %d", candidates[0].Score, candidates[1].Score)
	}
	if candidates[0].Track != 5 {
		t.Errorf("expected track 5 to win the tie on total matched hashes, got %d", candidates[0].Track)
	}

	// With totals equal too, the lower track id must win, deterministically.
	hits[3] = append(hits[3], model.Hit{Track: 2, AnchorTime: 99})
	candidates = Vote(query, hits, Config{ScoreMin: 1, Margin: 1.0})
	if candidates[0].Track != 2 {
		t.Errorf("expected lower track id to win a full tie, got %d", candidates[0].Track)
	}
}

func TestAcceptRejectsBelowScoreMin(t *testing.T) {
	candidates := []model.Candidate{{Track: 1, Score: 2, Margin: 100}}
	if _, ok := Accept(candidates, Config{ScoreMin: 5, Margin: 1.5}); ok {
		t.Error("expected rejection below score_min")
	}
}

func TestAcceptRejectsLowMargin(t *testing.T) {
	candidates := []model.Candidate{
		{Track: 1, Score: 10, Margin: 1.1},
		{Track: 2, Score: 9},
	}
	if _, ok := Accept(candidates, Config{ScoreMin: 5, Margin: 1.5}); ok {
		t.Error("expected rejection when margin over runner-up is too small")
	}
}

func TestAcceptSingleCandidateBypassesMargin(t *testing.T) {
	candidates := []model.Candidate{{Track: 1, Score: 10, Margin: 10}}
	got, ok := Accept(candidates, Config{ScoreMin: 5, Margin: 1.5})
	if !ok {
		t.Fatal("expected sole candidate above score_min to be accepted")
	}
	if got.Track != 1 {
		t.Errorf("expected track 1, got %d", got.Track)
	}
}

func TestAcceptNoCandidates(t *testing.T) {
	if _, ok := Accept(nil, Config{ScoreMin: 5}); ok {
		t.Error("expected no acceptance with zero candidates")
	}
}
