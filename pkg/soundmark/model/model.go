// Package model holds the data types shared between the engine and its
// storage/matching collaborators. Keeping them here (rather than in the
// root package) lets pkg/soundmark/index and pkg/soundmark/match depend on
// the shapes they need without importing the engine itself.
package model

import "time"

// TrackID is a stable, monotonically increasing identifier assigned by the
// Index Store when a track is first registered.
type TrackID uint32

// TrackMeta describes a track's catalog metadata, independent of its audio
// content.
type TrackMeta struct {
	ID         TrackID
	Title      string
	Artist     string
	YouTubeID  string
	DurationMs int
	CreatedAt  time.Time
}

// Fingerprint is one (hash, anchor-time) pair produced by the Fingerprint
// Generator for a single track.
type Fingerprint struct {
	Hash       uint32
	AnchorTime int // frame index of the anchor peak
}

// Hit is one stored fingerprint row returned by a Store lookup.
type Hit struct {
	Track      TrackID
	AnchorTime int
}

// Candidate is a ranked match returned by the Matcher or Engine.Identify.
type Candidate struct {
	Track        TrackID
	Score        int     // number of aligned fingerprint votes at the winning offset
	Offset       int     // estimated frame offset between query and reference
	TotalMatches int     // total matched hashes across every offset, tie-break key
	Margin       float64 // Score / next-ranked candidate's Score (for the top candidate, the runner-up); equals Score when there is no next candidate
	Confidence   float64 // 0-100 sigmoid-scaled figure, supplements Score/Margin
}

// Stats summarizes the Index Store's current contents.
type Stats struct {
	TrackCount       int
	FingerprintCount int64
	SizeBytes        int64
}
