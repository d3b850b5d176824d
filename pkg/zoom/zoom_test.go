package zoom

import (
	"math"
	"math/rand"
	"testing"
)

const floatTolerance = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in   float64
		want Level
	}{
		{-0.5, Min},
		{0, Min},
		{0.42, 0.42},
		{1, Max},
		{7, Max},
		{math.NaN(), Min},
		{math.Inf(1), Max},
		{math.Inf(-1), Min},
	}

	for _, tt := range tests {
		if got := Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestStepBoundaries(t *testing.T) {
	for _, start := range []Level{0, 0.1, 0.35, 0.9, 1} {
		if got := Step(start, 1.0); got != Max {
			t.Errorf("Step(%v, +1) = %v, want 1", start, got)
		}
		if got := Step(start, -1.0); got != Min {
			t.Errorf("Step(%v, -1) = %v, want 0", start, got)
		}
	}

	// Repeated steps stay pinned at the bounds.
	z := Level(0.95)
	for i := 0; i < 5; i++ {
		z = Step(z, StepSize)
	}
	if z != Max {
		t.Errorf("repeated +step: got %v, want 1", z)
	}
	for i := 0; i < 15; i++ {
		z = Step(z, -StepSize)
	}
	if z != Min {
		t.Errorf("repeated -step: got %v, want 0", z)
	}
}

func TestGestureUpdate(t *testing.T) {
	a := Point{X: 100, Y: 100}
	b := Point{X: 200, Y: 100}

	g, ok := Begin(a, b, 0.2)
	if !ok {
		t.Fatal("expected gesture to begin")
	}
	if !floatEquals(g.StartDistance, 100) {
		t.Errorf("StartDistance: got %v, want 100", g.StartDistance)
	}

	// Fingers spread to 150 px: ratio 1.5, delta 0.25.
	got := g.Update(a, Point{X: 250, Y: 100})
	if !floatEquals(float64(got), 0.45) {
		t.Errorf("spread: got %v, want 0.45", got)
	}

	// Fingers pinch to 60 px: ratio 0.6, delta -0.2.
	got = g.Update(a, Point{X: 160, Y: 100})
	if !floatEquals(float64(got), 0.0) {
		t.Errorf("pinch: got %v, want 0.0", got)
	}

	// Same distance leaves the start level.
	got = g.Update(Point{X: 0, Y: 0}, Point{X: 60, Y: 80})
	if !floatEquals(float64(got), 0.2) {
		t.Errorf("unchanged distance: got %v, want 0.2", got)
	}
}

func TestBeginRejectsCollapsedPinch(t *testing.T) {
	p := Point{X: 10, Y: 10}
	if _, ok := Begin(p, p, 0.5); ok {
		t.Error("expected zero-distance pinch to be rejected")
	}
	if _, ok := Begin(p, Point{X: math.NaN(), Y: 1}, 0.5); ok {
		t.Error("expected NaN point to be rejected")
	}

	var g Gesture
	if got := g.Update(p, Point{X: 500, Y: 500}); got != 0 {
		t.Errorf("zero gesture update: got %v, want 0", got)
	}
}

func TestGestureStaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		a := Point{X: rng.Float64() * 1000, Y: rng.Float64() * 2000}
		b := Point{X: rng.Float64() * 1000, Y: rng.Float64() * 2000}
		g, ok := Begin(a, b, Level(rng.Float64()))
		if !ok {
			continue
		}
		for j := 0; j < 10; j++ {
			c := Point{X: rng.Float64() * 1e6, Y: rng.Float64() * 1e-3}
			d := Point{X: rng.Float64(), Y: rng.Float64() * 1e6}
			z := g.Update(c, d)
			if z < Min || z > Max {
				t.Fatalf("level out of bounds: %v", z)
			}
		}
	}
}

func TestMagnification(t *testing.T) {
	tests := []struct {
		z    Level
		want int
	}{
		{0, 1},
		{0.04, 1},
		{0.05, 2},
		{0.5, 6},
		{1, 11},
	}
	for _, tt := range tests {
		if got := Magnification(tt.z); got != tt.want {
			t.Errorf("Magnification(%v) = %d, want %d", tt.z, got, tt.want)
		}
	}
}

func TestCropFactor(t *testing.T) {
	if got := CropFactor(0, 4); !floatEquals(got, 1) {
		t.Errorf("CropFactor(0,4) = %v, want 1", got)
	}
	if got := CropFactor(1, 4); !floatEquals(got, 4) {
		t.Errorf("CropFactor(1,4) = %v, want 4", got)
	}
	if got := CropFactor(0.5, 3); !floatEquals(got, 2) {
		t.Errorf("CropFactor(0.5,3) = %v, want 2", got)
	}
	if got := CropFactor(1, 0.2); !floatEquals(got, 1) {
		t.Errorf("CropFactor with max < 1 = %v, want 1", got)
	}
}
