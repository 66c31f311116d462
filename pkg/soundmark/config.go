package soundmark

import (
	"fmt"

	"github.com/soundmark/soundmark/pkg/soundmark/fingerprint"
)

// TargetZone bounds how far ahead of an anchor peak a target peak may be
// paired, in STFT frames.
type TargetZone struct {
	Min int
	Max int
}

// HashBitwidths controls how an (anchorFreq, targetFreq, deltaFrame) triple
// is packed into a uint32 hash. AnchorFreq+TargetFreq+Delta must not exceed
// 32, and Delta must be wide enough to represent TargetZone.Max.
type HashBitwidths struct {
	AnchorFreq int
	TargetFreq int
	Delta      int
}

// Config holds every DSP, matching, and storage tunable the Engine needs.
// Build one with defaultConfig and the With* options; Config is immutable
// once built.
type Config struct {
	SampleRate        int
	FFTSize           int
	HopLength         int
	DBFloor           float64
	FreqNeighborhood  int
	TimeNeighborhood  int
	ThresholdSigma    float64
	PeaksPerSecondCap int
	FanValue          int
	TargetZone        TargetZone
	HashBitwidths     HashBitwidths
	ScoreMin          int
	Margin            float64
	OffsetQuantization int
	BatchSize         int
	StoragePath       string
	IdentifyTimeout   float64 // seconds; 0 disables the timeout
	RobustFingerprints bool   // supplements the standard strategy, see fingerprint.Generate

	Logger  Logger
	Store   Store
	Decoder Decoder
}

// Option mutates a Config under construction.
type Option func(*Config)

func WithSampleRate(rate int) Option       { return func(c *Config) { c.SampleRate = rate } }
func WithFFTSize(size int) Option          { return func(c *Config) { c.FFTSize = size } }
func WithHopLength(hop int) Option         { return func(c *Config) { c.HopLength = hop } }
func WithDBFloor(floor float64) Option     { return func(c *Config) { c.DBFloor = floor } }
func WithThresholdSigma(sigma float64) Option {
	return func(c *Config) { c.ThresholdSigma = sigma }
}
func WithNeighborhood(freq, time int) Option {
	return func(c *Config) { c.FreqNeighborhood = freq; c.TimeNeighborhood = time }
}
func WithPeaksPerSecondCap(cap int) Option { return func(c *Config) { c.PeaksPerSecondCap = cap } }
func WithFanValue(fan int) Option          { return func(c *Config) { c.FanValue = fan } }
func WithTargetZone(min, max int) Option {
	return func(c *Config) { c.TargetZone = TargetZone{Min: min, Max: max} }
}
func WithHashBitwidths(anchorFreq, targetFreq, delta int) Option {
	return func(c *Config) {
		c.HashBitwidths = HashBitwidths{AnchorFreq: anchorFreq, TargetFreq: targetFreq, Delta: delta}
	}
}
func WithScoreMin(min int) Option           { return func(c *Config) { c.ScoreMin = min } }
func WithMargin(margin float64) Option      { return func(c *Config) { c.Margin = margin } }
func WithOffsetQuantization(q int) Option   { return func(c *Config) { c.OffsetQuantization = q } }
func WithBatchSize(n int) Option            { return func(c *Config) { c.BatchSize = n } }
func WithStoragePath(path string) Option    { return func(c *Config) { c.StoragePath = path } }
func WithIdentifyTimeout(seconds float64) Option {
	return func(c *Config) { c.IdentifyTimeout = seconds }
}
func WithRobustFingerprints(on bool) Option {
	return func(c *Config) { c.RobustFingerprints = on }
}
func WithLogger(log Logger) Option   { return func(c *Config) { c.Logger = log } }
func WithStore(store Store) Option   { return func(c *Config) { c.Store = store } }
func WithDecoder(dec Decoder) Option { return func(c *Config) { c.Decoder = dec } }

func defaultConfig() *Config {
	return &Config{
		SampleRate:        22050,
		FFTSize:           2048,
		HopLength:         512,
		DBFloor:           -80.0,
		FreqNeighborhood:  10,
		TimeNeighborhood:  10,
		ThresholdSigma:    0.5,
		PeaksPerSecondCap: 30,
		FanValue:          5,
		TargetZone:        TargetZone{Min: 1, Max: 20},
		HashBitwidths:     HashBitwidths{AnchorFreq: 12, TargetFreq: 12, Delta: 8},
		ScoreMin:          5,
		Margin:            1.5,
		OffsetQuantization: 1,
		BatchSize:         1000,
		StoragePath:       "soundmark.sqlite3",
		IdentifyTimeout:   30.0,
	}
}

// validate checks the invariants that the rest of the package relies on
// without re-checking at every call site.
func (c *Config) validate() error {
	bits := c.HashBitwidths.AnchorFreq + c.HashBitwidths.TargetFreq + c.HashBitwidths.Delta
	if bits > 32 {
		return fmt.Errorf("hash bitwidths sum to %d, exceeds 32", bits)
	}
	if (1 << uint(c.HashBitwidths.Delta)) <= c.TargetZone.Max {
		return fmt.Errorf("delta bitwidth %d cannot represent target zone max %d", c.HashBitwidths.Delta, c.TargetZone.Max)
	}
	if c.TargetZone.Min <= 0 || c.TargetZone.Min > c.TargetZone.Max {
		return fmt.Errorf("invalid target zone (%d, %d)", c.TargetZone.Min, c.TargetZone.Max)
	}
	if c.SampleRate < 8000 || c.SampleRate > 192000 {
		return fmt.Errorf("sample rate %d outside supported range [8000, 192000]", c.SampleRate)
	}

	maxFreqIdx := c.FFTSize / 2
	fpBits := fingerprint.Bitwidths{AnchorFreq: c.HashBitwidths.AnchorFreq, TargetFreq: c.HashBitwidths.TargetFreq, Delta: c.HashBitwidths.Delta}
	if err := fpBits.Validate(maxFreqIdx, c.TargetZone.Max); err != nil {
		return err
	}
	return nil
}
