package httpapi

import "fmt"

// Hash batch limits for the /api/identify/hashes path (WASM clients that
// run the DSP pipeline in-browser and upload only the resulting hashes).
const (
	// MaxHashesHardLimit is the absolute maximum hashes accepted per
	// request (~5.5 minutes of audio at the default 30 peaks/s and
	// fan-out of 5, i.e. up to 150 hashes per second).
	MaxHashesHardLimit = 50000

	// HashWarningThreshold triggers a log line for unusually large batches.
	HashWarningThreshold = 5000
)

// IdentifyHashesRequest is the request body for POST /api/identify/hashes.
// Hashes maps a packed fingerprint hash to its anchor frame index.
type IdentifyHashesRequest struct {
	Hashes map[uint32]int `json:"hashes" binding:"required"`
}

// Validate checks the request is within accepted limits.
func (r *IdentifyHashesRequest) Validate() error {
	if len(r.Hashes) == 0 {
		return fmt.Errorf("hashes cannot be empty")
	}
	if len(r.Hashes) > MaxHashesHardLimit {
		return fmt.Errorf("too many hashes: %d (maximum: %d)", len(r.Hashes), MaxHashesHardLimit)
	}
	return nil
}

// CandidateDTO represents a single ranked match in API responses.
type CandidateDTO struct {
	TrackID    uint32  `json:"track_id"`
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	YouTubeID  string  `json:"youtube_id,omitempty"`
	Score      int     `json:"score"`
	Offset     int     `json:"offset"`
	Margin     float64 `json:"margin"`
	Confidence float64 `json:"confidence"`
}

// IdentifyResponse is the response for POST /api/identify and
// POST /api/identify/hashes.
type IdentifyResponse struct {
	Matches []CandidateDTO `json:"matches"`
	Count   int            `json:"count"`
}

// AddTrackYouTubeRequest is the JSON body for POST /api/tracks when the
// client supplies a YouTube URL instead of an uploaded file.
type AddTrackYouTubeRequest struct {
	YouTubeURL string `json:"youtube_url" binding:"required"`
	Title      string `json:"title,omitempty"`
	Artist     string `json:"artist,omitempty"`
}

// Validate checks the request body is usable.
func (r *AddTrackYouTubeRequest) Validate() error {
	if r.YouTubeURL == "" {
		return fmt.Errorf("youtube_url is required")
	}
	return nil
}

// AddTrackResponse is the response for successful track ingestion.
type AddTrackResponse struct {
	Message   string `json:"message"`
	ID        uint32 `json:"id"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	YouTubeID string `json:"youtube_id,omitempty"`
}

// TrackDTO represents a track in API responses.
type TrackDTO struct {
	ID         uint32 `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	YouTubeID  string `json:"youtube_id,omitempty"`
	DurationMs int    `json:"duration_ms"`
}

// ListTracksResponse is the response for GET /api/tracks.
type ListTracksResponse struct {
	Tracks []TrackDTO `json:"tracks"`
	Count  int        `json:"count"`
}

// DeleteTrackResponse is the response for DELETE /api/tracks/{id}.
type DeleteTrackResponse struct {
	Message string `json:"message"`
	ID      uint32 `json:"id"`
}

// StatsResponse is the response for GET /api/stats.
type StatsResponse struct {
	TrackCount       int    `json:"track_count"`
	FingerprintCount int64  `json:"fingerprint_count"`
	SizeBytes        int64  `json:"size_bytes"`
	SizeHuman        string `json:"size_human"`
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
