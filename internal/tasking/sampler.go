package tasking

import (
	"math/rand"
	"sync"
	"time"

	"github.com/signalsfoundry/satti-simulator/internal/config"
)

// Sampler is a locked random source for the lifecycle engine. Commands run
// on concurrent goroutines, so every draw goes through the mutex.
type Sampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSampler returns a sampler over the given source. A nil rng gets a
// time-seeded source; tests pass a fixed seed instead.
func NewSampler(rng *rand.Rand) *Sampler {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Sampler{rng: rng}
}

// Duration draws a uniform duration from the given range.
func (s *Sampler) Duration(r config.DelayRange) time.Duration {
	if r.Max <= r.Min {
		return r.Min
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return r.Min + time.Duration(s.rng.Int63n(int64(r.Max-r.Min)))
}

// Float draws a uniform float64 from [lo, hi).
func (s *Sampler) Float(lo, hi float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.rng.Float64()*(hi-lo)
}

// Bernoulli reports true with probability p.
func (s *Sampler) Bernoulli(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() < p
}

// Choice returns a uniformly chosen element of items.
func (s *Sampler) Choice(items []string) string {
	if len(items) == 0 {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return items[s.rng.Intn(len(items))]
}
