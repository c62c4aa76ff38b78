package utils

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// Humanizer is the single source of randomness for timing and decisions, so a seeded instance makes a whole
// match replayable in tests. Safe for concurrent use.
type Humanizer struct {
	mu           sync.Mutex
	rnd          *rand.Rand
	sessionStart time.Time
}

func NewHumanizer(seed int64) *Humanizer {
	return &Humanizer{rnd: rand.New(rand.NewSource(seed))}
}

// SetSessionStart records the start of a match, Duration applies a fatigue multiplier that rises from
// 1.0 to 1.25 over the first 3 hours after it.
func (h *Humanizer) SetSessionStart(now time.Time) {
	h.mu.Lock()
	h.sessionStart = now
	h.mu.Unlock()
}

func (h *Humanizer) sessionFatigue(now time.Time) float64 {
	if h.sessionStart.IsZero() {
		return 1.0
	}
	f := now.Sub(h.sessionStart).Hours() / 3.0
	if f > 1.0 {
		f = 1.0
	}
	if f < 0 {
		f = 0
	}

	return 1.0 + 0.25*f
}

// sampleGamma returns a sample from the Gamma(shape, scale) distribution using
// the Marsaglia-Tsang squeeze method. shape must be >= 1.
func (h *Humanizer) sampleGamma(shape, scale float64) float64 {
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)
	for {
		x := h.rnd.NormFloat64()
		v := 1.0 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		x2 := x * x
		u := h.rnd.Float64()
		if u < 1.0-0.0331*(x2*x2) {
			return d * v * scale
		}
		if math.Log(u) < 0.5*x2+d*(1.0-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// Duration stretches d by a Gamma(4, 0.25) multiplier (mean 1.0, clamped to [0.4, 2.5]) and the session fatigue.
func (h *Humanizer) Duration(d time.Duration, now time.Time) time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()

	multiplier := h.sampleGamma(4.0, 0.25)
	if multiplier < 0.4 {
		multiplier = 0.4
	}
	if multiplier > 2.5 {
		multiplier = 2.5
	}

	return time.Duration(float64(d) * multiplier * h.sessionFatigue(now))
}

// RandLogNormal returns a duration sampled from a log-normal distribution with the given mean and
// standard deviation, used for idle gaps between matches.
func (h *Humanizer) RandLogNormal(mean, std time.Duration) time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()

	meanMs, stdMs := float64(mean.Milliseconds()), float64(std.Milliseconds())
	if meanMs <= 0 {
		return 0
	}
	variance := stdMs * stdMs
	mu := math.Log(meanMs * meanMs / math.Sqrt(variance+meanMs*meanMs))
	sigma := math.Sqrt(math.Log(1.0 + variance/(meanMs*meanMs)))
	sample := math.Exp(mu + h.rnd.NormFloat64()*sigma)
	if sample < 1 {
		sample = 1
	}

	return time.Duration(sample) * time.Millisecond
}

// Between returns a uniform int in [min, max].
func (h *Humanizer) Between(min, max int) int {
	if max <= min {
		return min
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	return min + h.rnd.Intn(max-min+1)
}

// Chance reports true with probability p.
func (h *Humanizer) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.rnd.Float64() < p
}

func (h *Humanizer) Shuffle(n int, swap func(i, j int)) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.rnd.Shuffle(n, swap)
}
