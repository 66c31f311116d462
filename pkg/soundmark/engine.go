// Package soundmark implements the Engine component: it orchestrates
// decode, spectrogram, peak extraction, fingerprinting, storage, and
// matching into the Ingest and Identify operations.
package soundmark

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/soundmark/soundmark/pkg/soundmark/audio"
	"github.com/soundmark/soundmark/pkg/soundmark/fingerprint"
	"github.com/soundmark/soundmark/pkg/soundmark/index"
	"github.com/soundmark/soundmark/pkg/soundmark/logging"
	"github.com/soundmark/soundmark/pkg/soundmark/match"
	"github.com/soundmark/soundmark/pkg/soundmark/model"
	"github.com/soundmark/soundmark/pkg/soundmark/peaks"
	"github.com/soundmark/soundmark/pkg/soundmark/spectrogram"
)

// SourceKind selects which Decoder variant Ingest/Identify should use.
type SourceKind int

const (
	FileSource SourceKind = iota
	YouTubeSource
	RawPCMSource
)

// IngestRequest describes one track to add to the index.
type IngestRequest struct {
	Kind       SourceKind
	Source     string // file path or YouTube URL; unused for RawPCMSource
	Samples    []float64
	SampleRate int
	Title      string
	Artist     string
	YouTubeID  string // catalog metadata only, never a matching signal
}

// IdentifyRequest describes one query clip to match against the index.
type IdentifyRequest struct {
	Kind       SourceKind
	Source     string
	Samples    []float64
	SampleRate int
}

// Engine is the top-level entry point: construct one with New and call
// Ingest/Identify.
type Engine struct {
	store          Store
	log            Logger
	cfg            *Config
	fileDecoder    Decoder
	youtubeDecoder Decoder
}

// New builds an Engine from the given options, wiring a default SQLite
// Store and zap-backed Logger when the caller doesn't supply their own.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, newError(InputError, "New", err)
	}

	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}

	store := cfg.Store
	if store == nil {
		s, err := index.Open(index.Config{Path: cfg.StoragePath, BatchSize: cfg.BatchSize})
		if err != nil {
			return nil, newError(StorageError, "New", err)
		}
		store = s
	}

	fileDecoder := cfg.Decoder
	if fileDecoder == nil {
		fileDecoder = audio.FileDecoder{SampleRate: cfg.SampleRate}
	}

	return &Engine{
		store:          store,
		log:            cfg.Logger,
		cfg:            cfg,
		fileDecoder:    fileDecoder,
		youtubeDecoder: audio.YouTubeDecoder{SampleRate: cfg.SampleRate},
	}, nil
}

// Ingest decodes req's audio, fingerprints it, and stores it as a new
// track. On any failure after the track row is created, the track (and
// any fingerprints already written) are deleted so the index never holds
// a half-ingested track.
func (e *Engine) Ingest(ctx context.Context, req IngestRequest) (TrackID, error) {
	samples, sampleRate, err := e.decode(ctx, req.Kind, req.Source, req.Samples, req.SampleRate)
	if err != nil {
		return 0, err
	}

	fps, numPeaks, err := e.fingerprintSamples(ctx, samples, sampleRate)
	if err != nil {
		return 0, err
	}
	e.log.Infof("ingest: extracted %d peaks, %d fingerprints", numPeaks, len(fps))

	durationMs := int(float64(len(samples)) / float64(sampleRate) * 1000)
	trackID, err := e.store.CreateTrack(ctx, model.TrackMeta{
		Title:      req.Title,
		Artist:     req.Artist,
		YouTubeID:  req.YouTubeID,
		DurationMs: durationMs,
	})
	if err != nil {
		return 0, newError(StorageError, "Ingest", err)
	}

	if err := e.store.InsertFingerprints(ctx, trackID, fps); err != nil {
		if delErr := e.store.DeleteTrack(ctx, trackID); delErr != nil {
			e.log.Errorf("ingest: rollback failed for track %d: %v", trackID, delErr)
		}
		return 0, newError(StorageError, "Ingest", err)
	}

	e.log.Infof("ingest: added track %d (%q by %q)", trackID, req.Title, req.Artist)
	return trackID, nil
}

// Identify decodes req's audio, fingerprints it, and looks for a matching
// track. It returns a single-element slice when a match clears the
// acceptance rule (score_min and margin), or an empty slice when no
// candidate does. If cfg.IdentifyTimeout elapses first, the returned error
// is a *Error with Kind==TimeoutError carrying whatever candidates had
// been ranked so far.
func (e *Engine) Identify(ctx context.Context, req IdentifyRequest) ([]Candidate, error) {
	if e.cfg.IdentifyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(e.cfg.IdentifyTimeout*float64(time.Second)))
		defer cancel()
	}

	samples, sampleRate, err := e.decode(ctx, req.Kind, req.Source, req.Samples, req.SampleRate)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, &Error{Kind: TimeoutError, Op: "Identify", Err: ctx.Err()}
		}
		return nil, err
	}

	queryFPs, numPeaks, err := e.fingerprintSamples(ctx, samples, sampleRate)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, &Error{Kind: TimeoutError, Op: "Identify", Err: ctx.Err()}
		}
		return nil, err
	}
	e.log.Infof("identify: query has %d peaks, %d fingerprints", numPeaks, len(queryFPs))

	return e.matchFingerprints(ctx, queryFPs, "Identify")
}

// IdentifyFingerprints matches a caller-supplied set of fingerprints
// directly against the index, skipping decode and spectrogram/peak
// extraction entirely. This is the path a WASM client uses: it runs the
// DSP pipeline itself in the browser and only ships the resulting
// (hash, anchor_time) pairs over the wire.
func (e *Engine) IdentifyFingerprints(ctx context.Context, fps []Fingerprint) ([]Candidate, error) {
	if e.cfg.IdentifyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(e.cfg.IdentifyTimeout*float64(time.Second)))
		defer cancel()
	}
	return e.matchFingerprints(ctx, fps, "IdentifyFingerprints")
}

func (e *Engine) matchFingerprints(ctx context.Context, queryFPs []model.Fingerprint, op string) ([]Candidate, error) {
	hashes := uniqueHashes(queryFPs)
	hits, err := e.store.LookupMany(ctx, hashes)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &Error{Kind: TimeoutError, Op: op, Err: ctx.Err()}
		}
		return nil, newError(StorageError, op, err)
	}

	candidates := match.Vote(queryFPs, hits, match.Config{
		ScoreMin:           e.cfg.ScoreMin,
		Margin:             e.cfg.Margin,
		OffsetQuantization: e.cfg.OffsetQuantization,
	})
	e.annotateConfidence(ctx, candidates, len(queryFPs))

	top, ok := match.Accept(candidates, match.Config{ScoreMin: e.cfg.ScoreMin, Margin: e.cfg.Margin})
	if !ok {
		return nil, nil
	}
	return []Candidate{top}, nil
}

func (e *Engine) decode(ctx context.Context, kind SourceKind, source string, samples []float64, sampleRate int) ([]float64, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, &Error{Kind: CancelledError, Op: "decode", Err: err}
	}

	var raw []float64
	var rate int
	var err error

	switch kind {
	case RawPCMSource:
		raw, rate = samples, sampleRate
	case YouTubeSource:
		raw, rate, err = e.youtubeDecoder.Decode(ctx, source)
	default:
		raw, rate, err = e.fileDecoder.Decode(ctx, source)
	}
	if err != nil {
		return nil, 0, newError(InputError, "decode", err)
	}
	if len(raw) == 0 {
		return nil, 0, newError(InputError, "decode", fmt.Errorf("decoded zero samples"))
	}
	if rate < 8000 || rate > 192000 {
		return nil, 0, newError(InputError, "decode", fmt.Errorf("sample rate %d outside supported range [8000, 192000]", rate))
	}
	if float64(len(raw))/float64(rate) < 0.1 {
		return nil, 0, newError(InputError, "decode", fmt.Errorf("clip shorter than 100ms"))
	}

	return raw, rate, nil
}

func (e *Engine) fingerprintSamples(ctx context.Context, samples []float64, sampleRate int) ([]model.Fingerprint, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, &Error{Kind: CancelledError, Op: "fingerprint", Err: err}
	}

	resampled, err := audio.Resample(samples, sampleRate, e.cfg.SampleRate)
	if err != nil {
		return nil, 0, newError(ProcessingError, "resample", err)
	}

	db, err := spectrogram.Compute(resampled, spectrogram.Config{
		FFTSize:   e.cfg.FFTSize,
		HopLength: e.cfg.HopLength,
		DBFloor:   e.cfg.DBFloor,
	})
	if err != nil {
		return nil, 0, newError(ProcessingError, "spectrogram", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, &Error{Kind: CancelledError, Op: "fingerprint", Err: err}
	}

	pks := peaks.Extract(db, peaks.Config{
		SampleRate:        e.cfg.SampleRate,
		FFTSize:           e.cfg.FFTSize,
		HopLength:         e.cfg.HopLength,
		FreqNeighborhood:  e.cfg.FreqNeighborhood,
		TimeNeighborhood:  e.cfg.TimeNeighborhood,
		ThresholdSigma:    e.cfg.ThresholdSigma,
		PeaksPerSecondCap: e.cfg.PeaksPerSecondCap,
	})
	if err := ctx.Err(); err != nil {
		return nil, 0, &Error{Kind: CancelledError, Op: "fingerprint", Err: err}
	}

	fps := fingerprint.Generate(pks, fingerprint.Config{
		FanValue:   e.cfg.FanValue,
		TargetZone: fingerprint.TargetZone{Min: e.cfg.TargetZone.Min, Max: e.cfg.TargetZone.Max},
		Bits: fingerprint.Bitwidths{
			AnchorFreq: e.cfg.HashBitwidths.AnchorFreq,
			TargetFreq: e.cfg.HashBitwidths.TargetFreq,
			Delta:      e.cfg.HashBitwidths.Delta,
		},
		Robust: e.cfg.RobustFingerprints,
	})

	return fps, len(pks), nil
}

// annotateConfidence fills in a sigmoid-scaled Confidence figure alongside
// Score/Margin, using the matched track's own fingerprint count as the
// normalizing reference so long tracks and short queries are compared
// fairly.
func (e *Engine) annotateConfidence(ctx context.Context, candidates []Candidate, queryFPCount int) {
	for i := range candidates {
		dbFPCount := queryFPCount
		if n, err := e.store.FingerprintCount(ctx, candidates[i].Track); err == nil && n > 0 {
			dbFPCount = int(n)
		}
		candidates[i].Confidence = confidence(candidates[i].Score, queryFPCount, dbFPCount)
	}
}

func confidence(matchCount, queryFPCount, dbFPCount int) float64 {
	if matchCount == 0 || queryFPCount == 0 || dbFPCount == 0 {
		return 0
	}

	minCount := queryFPCount
	if dbFPCount < minCount {
		minCount = dbFPCount
	}
	ratio := float64(matchCount) / float64(minCount)

	const (
		steepness = 20.0
		midpoint  = 0.15
	)
	conf := 100.0 / (1.0 + math.Exp(-steepness*(ratio-midpoint)))

	if ratio > 0.30 {
		conf = math.Min(100.0, conf+(ratio-0.30)*50)
	}
	if matchCount < 5 {
		conf *= float64(matchCount) / 5.0
	}
	return conf
}

func uniqueHashes(fps []model.Fingerprint) []uint32 {
	seen := make(map[uint32]struct{}, len(fps))
	out := make([]uint32, 0, len(fps))
	for _, fp := range fps {
		if _, ok := seen[fp.Hash]; ok {
			continue
		}
		seen[fp.Hash] = struct{}{}
		out = append(out, fp.Hash)
	}
	return out
}

func (e *Engine) GetTrack(ctx context.Context, id TrackID) (TrackMeta, error) {
	meta, err := e.store.GetTrack(ctx, id)
	if err != nil {
		return TrackMeta{}, newError(StorageError, "GetTrack", err)
	}
	return meta, nil
}

func (e *Engine) ListTracks(ctx context.Context) ([]TrackMeta, error) {
	tracks, err := e.store.ListTracks(ctx)
	if err != nil {
		return nil, newError(StorageError, "ListTracks", err)
	}
	return tracks, nil
}

func (e *Engine) DeleteTrack(ctx context.Context, id TrackID) error {
	if err := e.store.DeleteTrack(ctx, id); err != nil {
		return newError(StorageError, "DeleteTrack", err)
	}
	return nil
}

func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	stats, err := e.store.Stats(ctx)
	if err != nil {
		return Stats{}, newError(StorageError, "Stats", err)
	}
	return stats, nil
}

func (e *Engine) Optimize(ctx context.Context) error {
	if err := e.store.Optimize(ctx); err != nil {
		return newError(StorageError, "Optimize", err)
	}
	return nil
}

func (e *Engine) Close() error {
	return e.store.Close()
}
