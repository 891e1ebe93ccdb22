package decay

import (
	"math"
	"testing"
)

func TestProbabilityEdges(t *testing.T) {
	var m Model
	if p := m.Probability(50, 0); p != 0 {
		t.Fatalf("zero visible path should give zero probability, got %f", p)
	}
	if p := m.Probability(0, 100); p != 1 {
		t.Fatalf("zero decay length should decay immediately, got %f", p)
	}
}

func TestProbabilityExponential(t *testing.T) {
	var m Model
	got := m.Probability(50, 50)
	want := 1 - math.Exp(-1)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("one decay length of path: got %f, want %f", got, want)
	}
}

func TestProbabilityMonotonicInDistance(t *testing.T) {
	var m Model
	prev := 0.0
	for _, d := range []float64{1, 10, 50, 200, 1000} {
		p := m.Probability(50, d)
		if p <= prev || p >= 1 {
			t.Fatalf("probability at %f km is %f, previous %f", d, p, prev)
		}
		prev = p
	}
}
