package utils

import (
	"math"
	"testing"
)

func TestNewRandSource(t *testing.T) {
	rng := NewRandSource(12345)
	if rng.Seed() != 12345 {
		t.Fatalf("Expected seed 12345, got %d", rng.Seed())
	}

	// Zero seed falls back to the wall clock
	if NewRandSource(0).Seed() == 0 {
		t.Fatal("Expected zero seed to be replaced")
	}
}

func TestRandSourceSameSeedSameStream(t *testing.T) {
	a := NewRandSource(42)
	b := NewRandSource(42)
	for i := 0; i < 50; i++ {
		if a.Float64() != b.Float64() {
			t.Fatalf("streams diverged at draw %d", i)
		}
	}
}

func TestRandSourceFloat64(t *testing.T) {
	rng := NewRandSource(12345)

	for i := 0; i < 100; i++ {
		val := rng.Float64()
		if val < 0 || val >= 1.0 {
			t.Errorf("Float64() returned value outside [0, 1): %f", val)
		}
	}
}

func TestRandSourceIntn(t *testing.T) {
	rng := NewRandSource(12345)

	for i := 0; i < 100; i++ {
		val := rng.Intn(10)
		if val < 0 || val >= 10 {
			t.Errorf("Intn(10) returned value outside [0, 10): %d", val)
		}
	}
	if got := rng.Intn(0); got != 0 {
		t.Errorf("Intn(0) = %d, want 0", got)
	}
}

func TestRandSourceExpFloat64(t *testing.T) {
	rng := NewRandSource(12345)
	rate := 2.0

	samples := make([]float64, 5000)
	for i := range samples {
		samples[i] = rng.ExpFloat64(rate)
		if samples[i] < 0 {
			t.Fatalf("ExpFloat64() returned negative value: %f", samples[i])
		}
	}

	mean := Mean(samples)
	if math.Abs(mean-1.0/rate) > 0.05 {
		t.Errorf("ExpFloat64 mean %f not close to expected %f", mean, 1.0/rate)
	}

	if got := rng.ExpFloat64(math.Inf(1)); got != 0 {
		t.Errorf("ExpFloat64(+Inf) = %f, want 0", got)
	}
	if got := rng.ExpFloat64(0); !math.IsInf(got, 1) {
		t.Errorf("ExpFloat64(0) = %f, want +Inf", got)
	}
}

func TestRandSourceExpMean(t *testing.T) {
	rng := NewRandSource(7)

	samples := make([]float64, 5000)
	for i := range samples {
		samples[i] = rng.ExpMean(3)
	}
	if mean := Mean(samples); math.Abs(mean-3) > 0.2 {
		t.Errorf("ExpMean mean %f not close to 3", mean)
	}
	if got := rng.ExpMean(0); got != 0 {
		t.Errorf("ExpMean(0) = %f, want 0", got)
	}
}

func TestRandSourceBernoulliBool(t *testing.T) {
	rng := NewRandSource(12345)
	p := 0.7

	trueCount := 0
	trials := 2000
	for i := 0; i < trials; i++ {
		if rng.BernoulliBool(p) {
			trueCount++
		}
	}

	proportion := float64(trueCount) / float64(trials)
	if math.Abs(proportion-p) > 0.05 {
		t.Errorf("Bernoulli bool proportion %f not close to expected %f", proportion, p)
	}
	if rng.BernoulliBool(0) {
		t.Error("BernoulliBool(0) must never be true")
	}
}

func TestRandSourceUniformFloat64(t *testing.T) {
	rng := NewRandSource(12345)
	min := 5.0
	max := 15.0

	for i := 0; i < 100; i++ {
		val := rng.UniformFloat64(min, max)
		if val < min || val >= max {
			t.Errorf("UniformFloat64(%f, %f) returned value outside range: %f", min, max, val)
		}
	}
}
