package soundmark

import "context"

// Logger is the narrow logging surface the Engine and its collaborators
// depend on. pkg/soundmark/logging provides a zap-backed implementation;
// tests may supply a no-op or recording stub.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Store is the Index Store contract: durable storage for track metadata
// and fingerprint records, and the lookups the Matcher needs.
type Store interface {
	CreateTrack(ctx context.Context, meta TrackMeta) (TrackID, error)
	InsertFingerprints(ctx context.Context, track TrackID, fps []Fingerprint) error
	DeleteTrack(ctx context.Context, track TrackID) error
	Lookup(ctx context.Context, hash uint32) ([]Hit, error)
	LookupMany(ctx context.Context, hashes []uint32) (map[uint32][]Hit, error)
	GetTrack(ctx context.Context, track TrackID) (TrackMeta, error)
	ListTracks(ctx context.Context) ([]TrackMeta, error)
	FingerprintCount(ctx context.Context, track TrackID) (int64, error)
	Stats(ctx context.Context) (Stats, error)
	Optimize(ctx context.Context) error
	Close() error
}

// Decoder turns an arbitrary audio source into mono PCM samples at a known
// sample rate. Implementations live in pkg/soundmark/audio: FileDecoder
// (ffmpeg), RawPCMDecoder (in-memory samples),
// and YouTubeDecoder. A MicrophoneDecoder variant is named in SPEC_FULL.md
// but has no implementation in this module; microphone capture is out of
// scope.
type Decoder interface {
	Decode(ctx context.Context, source string) (samples []float64, sampleRate int, err error)
}
