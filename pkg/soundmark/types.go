package soundmark

import "github.com/soundmark/soundmark/pkg/soundmark/model"

// These aliases keep soundmark.TrackID, soundmark.Candidate, etc. as the
// public API while letting index/match/fingerprint depend on model instead
// of on this package, avoiding an import cycle with engine.go.
type (
	TrackID     = model.TrackID
	TrackMeta   = model.TrackMeta
	Fingerprint = model.Fingerprint
	Hit         = model.Hit
	Candidate   = model.Candidate
	Stats       = model.Stats
)
