package backoff

import (
	"testing"
	"time"
)

func TestFixedIntervalNeverChanges(t *testing.T) {
	b := NewFixed(EstablishInterval)
	for i := 0; i < 10; i++ {
		if got := b.Next(); got != EstablishInterval {
			t.Fatalf("attempt %d: delay = %v, want %v", i, got, EstablishInterval)
		}
	}
	if got := b.Attempts(); got != 10 {
		t.Errorf("attempts = %d, want 10", got)
	}
}

func TestExponentialGrowthCapped(t *testing.T) {
	b := NewWithConfig(Config{
		Initial:    100 * time.Millisecond,
		Max:        400 * time.Millisecond,
		Multiplier: 2.0,
		Jitter:     0,
	})

	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		400 * time.Millisecond, // capped
	}
	for i, w := range want {
		if got := b.Next(); got != w {
			t.Errorf("attempt %d: delay = %v, want %v", i, got, w)
		}
	}
}

func TestReset(t *testing.T) {
	b := NewWithConfig(Config{
		Initial:    100 * time.Millisecond,
		Max:        time.Second,
		Multiplier: 2.0,
		Jitter:     0,
	})
	b.Next()
	b.Next()

	b.Reset()
	if got := b.Attempts(); got != 0 {
		t.Errorf("attempts after reset = %d", got)
	}
	if got := b.Next(); got != 100*time.Millisecond {
		t.Errorf("delay after reset = %v, want initial", got)
	}
}

func TestJitterStaysWithinBound(t *testing.T) {
	base := 100 * time.Millisecond
	b := NewWithConfig(Config{
		Initial:    base,
		Max:        base,
		Multiplier: 1.0,
		Jitter:     0.25,
	})

	for i := 0; i < 100; i++ {
		got := b.Next()
		if got < base || got > base+base/4 {
			t.Fatalf("delay %v outside [%v, %v]", got, base, base+base/4)
		}
	}
}

func TestDefaultsApplied(t *testing.T) {
	b := New()
	first := b.Next()
	if first < DefaultInitial || first > DefaultInitial+time.Duration(float64(DefaultInitial)*DefaultJitter) {
		t.Errorf("first delay = %v, want about %v", first, DefaultInitial)
	}

	// Invalid settings fall back to defaults rather than misbehaving.
	b = NewWithConfig(Config{Initial: -1, Max: -1, Multiplier: 0.5, Jitter: -2})
	if got := b.Next(); got != DefaultInitial {
		t.Errorf("delay = %v, want %v", got, DefaultInitial)
	}
	if got := b.Next(); got != 2*DefaultInitial {
		t.Errorf("second delay = %v, want %v", got, 2*DefaultInitial)
	}
}
