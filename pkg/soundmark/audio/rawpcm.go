package audio

import "context"

// RawPCMDecoder serves already-decoded mono samples back through the
// Decoder interface, for callers that want in-memory audio to go through a
// Decoder (for example via soundmark.WithDecoder). The engine's
// RawPCMSource requests, the tests and the WASM build pass samples directly
// and do not use it.
type RawPCMDecoder struct {
	Samples    []float64
	SampleRate int
}

func (d RawPCMDecoder) Decode(ctx context.Context, source string) ([]float64, int, error) {
	return d.Samples, d.SampleRate, nil
}
