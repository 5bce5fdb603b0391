package generator

import (
	"math/rand"
	"testing"
)

func TestResourceSamples_NonNegative(t *testing.T) {
	g := New(rand.New(rand.NewSource(1)))

	samples := g.ResourceSamples(500)
	if len(samples) != 500 {
		t.Fatalf("expected 500 samples, got %d", len(samples))
	}
	for i, s := range samples {
		if s < 0 {
			t.Fatalf("sample %d is negative: %d", i, s)
		}
	}
}

func TestResourceSamples_Deterministic(t *testing.T) {
	a := New(rand.New(rand.NewSource(42))).ResourceSamples(50)
	b := New(rand.New(rand.NewSource(42))).ResourceSamples(50)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestNormal_RoughlyCentered(t *testing.T) {
	g := New(rand.New(rand.NewSource(7)))

	var sum float64
	const n = 20000
	for i := 0; i < n; i++ {
		sum += g.Normal(5, 2)
	}
	mean := sum / n
	if mean < 4.9 || mean > 5.1 {
		t.Fatalf("sample mean %f too far from 5", mean)
	}
}
