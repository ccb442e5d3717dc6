package tasking

import (
	"math/rand"
	"testing"
	"time"

	"github.com/signalsfoundry/satti-simulator/internal/config"
)

func TestSamplerDurationStaysInRange(t *testing.T) {
	s := NewSampler(rand.New(rand.NewSource(9)))
	r := config.DelayRange{Min: 10 * time.Millisecond, Max: 50 * time.Millisecond}
	for i := 0; i < 1000; i++ {
		d := s.Duration(r)
		if d < r.Min || d >= r.Max {
			t.Fatalf("duration %v outside [%v, %v)", d, r.Min, r.Max)
		}
	}
}

func TestSamplerDurationDegenerateRange(t *testing.T) {
	s := NewSampler(rand.New(rand.NewSource(9)))
	r := config.DelayRange{Min: 5 * time.Millisecond, Max: 5 * time.Millisecond}
	if d := s.Duration(r); d != 5*time.Millisecond {
		t.Fatalf("duration = %v, want 5ms", d)
	}
}

func TestSamplerBernoulliExtremes(t *testing.T) {
	s := NewSampler(rand.New(rand.NewSource(1)))
	for i := 0; i < 100; i++ {
		if s.Bernoulli(0) {
			t.Fatal("Bernoulli(0) returned true")
		}
		if !s.Bernoulli(1) {
			t.Fatal("Bernoulli(1) returned false")
		}
	}
}

func TestSamplerFloatRange(t *testing.T) {
	s := NewSampler(rand.New(rand.NewSource(4)))
	for i := 0; i < 1000; i++ {
		v := s.Float(2.0, 28.0)
		if v < 2.0 || v >= 28.0 {
			t.Fatalf("value %v outside [2, 28)", v)
		}
	}
}

func TestSamplerChoice(t *testing.T) {
	s := NewSampler(rand.New(rand.NewSource(4)))
	if got := s.Choice(nil); got != "" {
		t.Fatalf("Choice(nil) = %q, want empty", got)
	}
	items := []string{"NADIR", "OFF_NADIR"}
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		seen[s.Choice(items)] = true
	}
	if !seen["NADIR"] || !seen["OFF_NADIR"] {
		t.Fatalf("choice never produced both items: %v", seen)
	}
}
