//go:build js && wasm
// +build js,wasm

package main

import (
	"fmt"
	"syscall/js"

	"github.com/soundmark/soundmark/pkg/soundmark/fingerprint"
	"github.com/soundmark/soundmark/pkg/soundmark/peaks"
	"github.com/soundmark/soundmark/pkg/soundmark/spectrogram"
)

// Error codes returned to JavaScript.
const (
	ErrorNone = iota
	ErrorInvalidArgs
	ErrorSpectrogramFailed
	ErrorPeakExtraction
	ErrorHashGeneration
)

// Mirrors pkg/soundmark.defaultConfig's DSP tunables. The WASM build can't
// import pkg/soundmark itself (it pulls in gorm/sqlite, which don't target
// js/wasm), so the constellation parameters are duplicated here.
const (
	fftSize          = 2048
	hopLength        = 512
	dbFloor          = -80.0
	freqNeighborhood = 10
	timeNeighborhood = 10
	thresholdSigma   = 0.5
	peaksPerSecond   = 30
	fanValue         = 5
	targetZoneMin    = 1
	targetZoneMax    = 20
	anchorFreqBits   = 12
	targetFreqBits   = 12
	deltaBits        = 8
)

// generateFingerprint runs the same spectrogram -> peaks -> fingerprint
// stages the server uses, in-browser. Unlike the server it does not
// resample: samples are analyzed at the caller's sampleRate, so frames
// line up with the server's only for 22050 Hz input.
// Returns: {error: number, data: array | string}.
func generateFingerprint(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return makeErrorResponse(ErrorInvalidArgs, "expected 3 arguments: audioArray, sampleRate, channels")
	}

	audioDataJS, sampleRateJS, channelsJS := args[0], args[1], args[2]

	if audioDataJS.Type() != js.TypeObject {
		return makeErrorResponse(ErrorInvalidArgs, "audioArray must be an Array or Float64Array")
	}
	if sampleRateJS.Type() != js.TypeNumber || channelsJS.Type() != js.TypeNumber {
		return makeErrorResponse(ErrorInvalidArgs, "sampleRate and channels must be numbers")
	}

	sampleRate := sampleRateJS.Int()
	channels := channelsJS.Int()
	if sampleRate <= 0 {
		return makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("invalid sample rate: %d", sampleRate))
	}
	if channels < 1 || channels > 2 {
		return makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("channels must be 1 (mono) or 2 (stereo), got: %d", channels))
	}

	length := audioDataJS.Length()
	if length == 0 {
		return makeErrorResponse(ErrorInvalidArgs, "audioArray is empty")
	}

	samples := make([]float64, length)
	for i := 0; i < length; i++ {
		val := audioDataJS.Index(i)
		if val.Type() != js.TypeNumber {
			return makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("audioArray element %d is not a number", i))
		}
		samples[i] = val.Float()
	}
	if channels == 2 {
		samples = stereoToMono(samples)
	}

	db, err := spectrogram.Compute(samples, spectrogram.Config{FFTSize: fftSize, HopLength: hopLength, DBFloor: dbFloor})
	if err != nil {
		return makeErrorResponse(ErrorSpectrogramFailed, fmt.Sprintf("failed to compute spectrogram: %v", err))
	}

	pks := peaks.Extract(db, peaks.Config{
		SampleRate:        sampleRate,
		FFTSize:           fftSize,
		HopLength:         hopLength,
		FreqNeighborhood:  freqNeighborhood,
		TimeNeighborhood:  timeNeighborhood,
		ThresholdSigma:    thresholdSigma,
		PeaksPerSecondCap: peaksPerSecond,
	})
	if len(pks) == 0 {
		return makeErrorResponse(ErrorPeakExtraction, "no peaks found in audio (audio may be silent or too short)")
	}

	fps := fingerprint.Generate(pks, fingerprint.Config{
		FanValue:   fanValue,
		TargetZone: fingerprint.TargetZone{Min: targetZoneMin, Max: targetZoneMax},
		Bits:       fingerprint.Bitwidths{AnchorFreq: anchorFreqBits, TargetFreq: targetFreqBits, Delta: deltaBits},
	})
	if len(fps) == 0 {
		return makeErrorResponse(ErrorHashGeneration, "no fingerprint hashes generated")
	}

	hashArray := js.Global().Get("Array").New()
	for i, fp := range fps {
		hashObj := js.Global().Get("Object").New()
		hashObj.Set("hash", fp.Hash)
		hashObj.Set("anchorTime", fp.AnchorTime) // STFT frame index, not milliseconds
		hashArray.SetIndex(i, hashObj)
	}

	result := js.Global().Get("Object").New()
	result.Set("error", ErrorNone)
	result.Set("data", hashArray)
	return result
}

func stereoToMono(stereo []float64) []float64 {
	if len(stereo)%2 != 0 {
		stereo = stereo[:len(stereo)-1]
	}
	mono := make([]float64, len(stereo)/2)
	for i := range mono {
		mono[i] = (stereo[i*2] + stereo[i*2+1]) / 2.0
	}
	return mono
}

func makeErrorResponse(errorCode int, message string) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", errorCode)
	result.Set("data", message)
	return result
}

func main() {
	console := js.Global().Get("console")
	logLine := func(msg string) {
		if !console.IsUndefined() {
			console.Call("log", msg)
		}
	}

	done := make(chan struct{})

	logLine("soundmark WASM module initializing...")
	js.Global().Set("generateFingerprint", js.FuncOf(generateFingerprint))
	logLine("generateFingerprint function registered")

	window := js.Global().Get("window")
	if !window.IsUndefined() {
		event := js.Global().Get("CustomEvent").New("wasmReady", js.Global().Get("Object").New())
		window.Call("dispatchEvent", event)
		logLine("wasmReady event dispatched")
	} else if !console.IsUndefined() {
		console.Call("error", "window object is undefined")
	}

	logLine("soundmark WASM module loaded and ready")
	<-done
}
