package backoff

import (
	"math/rand"
	"sync"
	"time"
)

// Defaults for reconnect-style backoff.
const (
	// DefaultInitial is the initial retry delay.
	DefaultInitial = 1 * time.Second

	// DefaultMax is the maximum retry delay.
	DefaultMax = 60 * time.Second

	// DefaultMultiplier is the factor by which the delay increases.
	DefaultMultiplier = 2.0

	// DefaultJitter is the maximum jitter as a fraction of the base delay.
	DefaultJitter = 0.25

	// EstablishInterval is the fixed delay between outbound connection
	// attempts during lane establishment.
	EstablishInterval = 50 * time.Millisecond
)

// Backoff calculates retry delays, optionally exponential with jitter.
type Backoff struct {
	mu sync.Mutex

	current time.Duration

	initial    time.Duration
	max        time.Duration
	multiplier float64
	jitter     float64

	attempts int

	rng *rand.Rand
}

// Config customizes backoff parameters.
type Config struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     float64
}

// New creates a backoff calculator with reconnect defaults.
func New() *Backoff {
	return NewWithConfig(Config{})
}

// NewFixed creates a calculator that always returns the same delay.
// Establishment uses NewFixed(EstablishInterval).
func NewFixed(interval time.Duration) *Backoff {
	return NewWithConfig(Config{
		Initial:    interval,
		Max:        interval,
		Multiplier: 1.0,
		Jitter:     0,
	})
}

// NewWithConfig creates a backoff calculator with custom settings.
// Zero or invalid fields fall back to the defaults.
func NewWithConfig(cfg Config) *Backoff {
	if cfg.Initial <= 0 {
		cfg.Initial = DefaultInitial
	}
	if cfg.Max <= 0 {
		cfg.Max = DefaultMax
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = DefaultMultiplier
	}
	if cfg.Jitter < 0 {
		cfg.Jitter = 0
	}

	return &Backoff{
		current:    cfg.Initial,
		initial:    cfg.Initial,
		max:        cfg.Max,
		multiplier: cfg.Multiplier,
		jitter:     cfg.Jitter,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next returns the next delay (with jitter) and advances the backoff.
func (b *Backoff) Next() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	delay := b.addJitter(b.current)

	b.attempts++
	next := time.Duration(float64(b.current) * b.multiplier)
	if next > b.max {
		next = b.max
	}
	b.current = next

	return delay
}

// Reset resets the backoff to initial values.
// Call this after a successful connection.
func (b *Backoff) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = b.initial
	b.attempts = 0
}

// Attempts returns the number of attempts since the last reset.
func (b *Backoff) Attempts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempts
}

// addJitter adds random jitter to a delay.
func (b *Backoff) addJitter(d time.Duration) time.Duration {
	if b.jitter <= 0 {
		return d
	}
	jitterAmount := time.Duration(float64(d) * b.jitter * b.rng.Float64())
	return d + jitterAmount
}
