package fingerprint

import (
	"testing"

	"github.com/soundmark/soundmark/pkg/soundmark/peaks"
)

func testBits() Bitwidths {
	return Bitwidths{AnchorFreq: 12, TargetFreq: 12, Delta: 8}
}

func TestGenerateFanOut(t *testing.T) {
	pts := []peaks.Peak{
		{TimeIdx: 0, FreqIdx: 10},
		{TimeIdx: 2, FreqIdx: 20},
		{TimeIdx: 4, FreqIdx: 30},
		{TimeIdx: 6, FreqIdx: 40},
		{TimeIdx: 8, FreqIdx: 50},
		{TimeIdx: 10, FreqIdx: 60},
		{TimeIdx: 12, FreqIdx: 70},
	}

	cfg := Config{FanValue: 5, TargetZone: TargetZone{Min: 1, Max: 20}, Bits: testBits()}
	fps := Generate(pts, cfg)

	// First peak has 6 candidates ahead but fan-out caps at 5.
	count := 0
	for _, fp := range fps {
		if fp.AnchorTime == 0 {
			count++
		}
	}
	if count != 5 {
		t.Fatalf("expected fan-out to cap the first anchor at 5 fingerprints, got %d", count)
	}
}

func TestGenerateRespectsTargetZone(t *testing.T) {
	pts := []peaks.Peak{
		{TimeIdx: 0, FreqIdx: 10},
		{TimeIdx: 25, FreqIdx: 20}, // outside zone (Max=20)
	}

	cfg := Config{FanValue: 5, TargetZone: TargetZone{Min: 1, Max: 20}, Bits: testBits()}
	fps := Generate(pts, cfg)

	if len(fps) != 0 {
		t.Errorf("expected no fingerprints for a pair outside the target zone, got %d", len(fps))
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	pts := []peaks.Peak{
		{TimeIdx: 0, FreqIdx: 10},
		{TimeIdx: 3, FreqIdx: 15},
		{TimeIdx: 5, FreqIdx: 20},
	}
	cfg := Config{FanValue: 5, TargetZone: TargetZone{Min: 1, Max: 20}, Bits: testBits()}

	a := Generate(pts, cfg)
	b := Generate(pts, cfg)

	if len(a) != len(b) {
		t.Fatalf("expected deterministic output, got lengths %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("expected identical fingerprint at index %d, got %v vs %v", i, a[i], b[i])
		}
	}
}

func TestGenerateRobustMergesAndDedupes(t *testing.T) {
	pts := []peaks.Peak{
		{TimeIdx: 0, FreqIdx: 10},
		{TimeIdx: 3, FreqIdx: 15},
		{TimeIdx: 5, FreqIdx: 20},
		{TimeIdx: 22, FreqIdx: 25},
	}

	standard := Generate(pts, Config{FanValue: 5, TargetZone: TargetZone{Min: 1, Max: 20}, Bits: testBits()})
	robust := Generate(pts, Config{FanValue: 5, TargetZone: TargetZone{Min: 1, Max: 20}, Bits: testBits(), Robust: true})

	if len(robust) < len(standard) {
		t.Errorf("expected robust mode to find at least as many fingerprints as standard, got %d < %d", len(robust), len(standard))
	}

	seen := make(map[Fingerprint]bool)
	for _, fp := range robust {
		if seen[fp] {
			t.Errorf("robust output contains duplicate fingerprint %v", fp)
		}
		seen[fp] = true
	}
}

func TestPackOverflow(t *testing.T) {
	bits := Bitwidths{AnchorFreq: 4, TargetFreq: 4, Delta: 4}
	if _, ok := Pack(100, 1, 1, bits); ok {
		t.Error("expected overflow to be rejected")
	}
	if _, ok := Pack(1, 1, 1, bits); !ok {
		t.Error("expected valid pack to succeed")
	}
}
