package tauola

import (
	"math"
	"math/rand"
	"testing"
)

func TestMeanRangeScalesWithEnergy(t *testing.T) {
	var s Sampler
	// A 1e18 eV tau has a gamma of ~5.6e8 and a decay length of ~49 km.
	got := s.MeanRange(1e18)
	if got < 40 || got > 60 {
		t.Fatalf("mean range at 1e18 eV is %f km, expected ~49 km", got)
	}
	if r := s.MeanRange(2e18) / got; math.Abs(r-2) > 1e-12 {
		t.Fatalf("mean range should scale linearly with energy, ratio %f", r)
	}
}

func TestSampleRangeDistribution(t *testing.T) {
	var s Sampler
	rng := rand.New(rand.NewSource(3))

	const n = 200_000
	var sum float64
	for i := 0; i < n; i++ {
		d := s.SampleRange(rng, 1e18)
		if d < 0 {
			t.Fatalf("negative decay length %f", d)
		}
		sum += d
	}
	mean := sum / n
	want := s.MeanRange(1e18)
	if math.Abs(mean-want)/want > 0.02 {
		t.Fatalf("sampled mean %f km deviates from %f km", mean, want)
	}
}

func TestSampleRangeZeroEnergy(t *testing.T) {
	var s Sampler
	rng := rand.New(rand.NewSource(1))
	if d := s.SampleRange(rng, 0); d != 0 {
		t.Fatalf("zero-energy tau should not travel, got %f", d)
	}
}

func TestSampleShowerEnergyBounds(t *testing.T) {
	var s Sampler
	rng := rand.New(rand.NewSource(5))

	const etau = 1e18
	zeros := 0
	const n = 100_000
	for i := 0; i < n; i++ {
		e := s.SampleShowerEnergy(rng, etau)
		if e < 0 || e > etau {
			t.Fatalf("shower energy %g outside [0, %g]", e, etau)
		}
		if e == 0 {
			zeros++
		}
	}
	// The muon channel leaves ~18% of decays with no shower.
	frac := float64(zeros) / n
	if frac < 0.16 || frac > 0.20 {
		t.Fatalf("zero-shower fraction %f, expected ~0.18", frac)
	}
}

func TestLorentzGamma(t *testing.T) {
	if g := LorentzGamma(tauMassEV); math.Abs(g-1) > 1e-12 {
		t.Fatalf("tau at rest mass should have gamma 1, got %f", g)
	}
	if g := LorentzGamma(1e9); g != 1 {
		t.Fatalf("sub-mass energy should clamp to gamma 1, got %f", g)
	}
	if g := LorentzGamma(1e18); g < 5e8 || g > 6e8 {
		t.Fatalf("gamma at 1e18 eV is %g, expected ~5.6e8", g)
	}
}
