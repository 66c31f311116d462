package soundmark

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}

// generateChirp synthesizes a linear frequency sweep, giving the
// constellation extractor a varied, deterministic signal to work with.
func generateChirp(durationSec float64, sampleRate int, f0, f1 float64) []float64 {
	n := int(durationSec * float64(sampleRate))
	samples := make([]float64, n)
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		freq := f0 + (f1-f0)*(t/durationSec)/2
		samples[i] = 0.6 * math.Sin(2*math.Pi*freq*t)
	}
	return samples
}

func generateNoise(durationSec float64, sampleRate int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	n := int(durationSec * float64(sampleRate))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = rng.Float64()*2 - 1
	}
	return samples
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.sqlite3")
	e, err := New(
		WithStoragePath(path),
		WithLogger(nopLogger{}),
		WithSampleRate(22050),
	)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func TestIngestAndIdentifyExactClip(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	samples := generateChirp(6, 22050, 300, 3000)
	id, err := e.Ingest(ctx, IngestRequest{Kind: RawPCMSource, Samples: samples, SampleRate: 22050, Title: "Sweep", Artist: "Test"})
	require.NoError(t, err)

	matches, err := e.Identify(ctx, IdentifyRequest{Kind: RawPCMSource, Samples: samples, SampleRate: 22050})
	require.NoError(t, err)
	require.Len(t, matches, 1, "expected exactly 1 match on an identical clip")
	require.Equal(t, id, matches[0].Track)
	require.Zero(t, matches[0].Offset, "expected zero offset for an identical clip")
}

func TestIdentifySubClipRecoversOffset(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	samples := generateChirp(10, 22050, 300, 3000)
	id, err := e.Ingest(ctx, IngestRequest{Kind: RawPCMSource, Samples: samples, SampleRate: 22050, Title: "Sweep", Artist: "Test"})
	require.NoError(t, err)

	// Query with a clip starting 3 seconds in.
	startSample := 3 * 22050
	subClip := samples[startSample : startSample+4*22050]

	matches, err := e.Identify(ctx, IdentifyRequest{Kind: RawPCMSource, Samples: subClip, SampleRate: 22050})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, id, matches[0].Track)
	require.Positive(t, matches[0].Offset, "expected a positive offset for a clip starting mid-track")
}

func TestIdentifyNoiseFindsNoMatch(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	samples := generateChirp(6, 22050, 300, 3000)
	_, err := e.Ingest(ctx, IngestRequest{Kind: RawPCMSource, Samples: samples, SampleRate: 22050, Title: "Sweep", Artist: "Test"})
	require.NoError(t, err)

	noise := generateNoise(4, 22050, 42)
	matches, err := e.Identify(ctx, IdentifyRequest{Kind: RawPCMSource, Samples: noise, SampleRate: 22050})
	require.NoError(t, err)
	require.Empty(t, matches, "expected no match against unrelated noise")
}

func TestDeleteTrackRemovesItFromMatching(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	samples := generateChirp(6, 22050, 300, 3000)
	id, err := e.Ingest(ctx, IngestRequest{Kind: RawPCMSource, Samples: samples, SampleRate: 22050, Title: "Sweep", Artist: "Test"})
	require.NoError(t, err)

	require.NoError(t, e.DeleteTrack(ctx, id))

	matches, err := e.Identify(ctx, IdentifyRequest{Kind: RawPCMSource, Samples: samples, SampleRate: 22050})
	require.NoError(t, err)
	require.Empty(t, matches, "expected no match after deletion")

	_, err = e.GetTrack(ctx, id)
	require.Error(t, err, "expected GetTrack to fail for a deleted track")
}

func TestIngestRejectsTooShortClip(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	samples := make([]float64, 100) // far under 100ms at 22050Hz
	_, err := e.Ingest(ctx, IngestRequest{Kind: RawPCMSource, Samples: samples, SampleRate: 22050, Title: "Too short", Artist: "Test"})
	require.Error(t, err)

	var soundErr *Error
	require.True(t, errors.As(err, &soundErr))
	require.Equal(t, InputError, soundErr.Kind)
}
