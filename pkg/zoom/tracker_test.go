package zoom

import "testing"

func pts(coords ...float64) []Point {
	var out []Point
	for i := 0; i+1 < len(coords); i += 2 {
		out = append(out, Point{X: coords[i], Y: coords[i+1]})
	}
	return out
}

func TestTrackerRequiresTwoTouches(t *testing.T) {
	var tr Tracker

	z, began, _ := tr.Touches(pts(0, 0), 0.3)
	if began || tr.Active() || z != 0.3 {
		t.Errorf("single touch should not start a pinch (z=%v began=%v)", z, began)
	}

	z, began, _ = tr.Touches(pts(0, 0, 10, 0, 20, 0), 0.3)
	if began || tr.Active() || z != 0.3 {
		t.Errorf("three touches should not start a pinch (z=%v began=%v)", z, began)
	}
}

func TestTrackerPinchLifecycle(t *testing.T) {
	var tr Tracker

	z, began, _ := tr.Touches(pts(0, 0, 100, 0), 0.2)
	if !began || !tr.Active() {
		t.Fatal("expected pinch to begin")
	}
	if z != 0.2 {
		t.Errorf("begin should not move level, got %v", z)
	}

	z, _, _ = tr.Touches(pts(0, 0, 200, 0), z)
	if !floatEquals(float64(z), 0.7) {
		t.Errorf("after spread: got %v, want 0.7", z)
	}

	z, _, ended := tr.Touches(nil, z)
	if !ended || tr.Active() {
		t.Error("expected pinch to end on release")
	}
	if !floatEquals(float64(z), 0.7) {
		t.Errorf("end should not move level, got %v", z)
	}
}

func TestTrackerRebasesOnTouchCountChange(t *testing.T) {
	var tr Tracker

	z, _, _ := tr.Touches(pts(0, 0, 100, 0), 0)
	z, _, _ = tr.Touches(pts(0, 0, 150, 0), z) // 0.25
	if !floatEquals(float64(z), 0.25) {
		t.Fatalf("got %v, want 0.25", z)
	}

	// A third finger lands: the pinch ends.
	z, _, ended := tr.Touches(pts(0, 0, 150, 0, 50, 50), z)
	if !ended {
		t.Error("expected pinch to end when a third finger lands")
	}

	// Back to two fingers at a new distance: re-based, no jump.
	z, began, _ := tr.Touches(pts(0, 0, 400, 0), z)
	if !began {
		t.Fatal("expected pinch to re-begin")
	}
	if !floatEquals(float64(z), 0.25) {
		t.Errorf("re-base should keep level, got %v", z)
	}

	// Ratio is now relative to 400.
	z, _, _ = tr.Touches(pts(0, 0, 800, 0), z)
	if !floatEquals(float64(z), 0.75) {
		t.Errorf("after re-based spread: got %v, want 0.75", z)
	}
}

func TestTrackerCollapsedStartIsNoop(t *testing.T) {
	var tr Tracker

	z, began, _ := tr.Touches(pts(5, 5, 5, 5), 0.4)
	if began || tr.Active() {
		t.Error("collapsed pinch should not begin")
	}
	z, _, _ = tr.Touches(pts(5, 5, 500, 5), z)
	if z != 0.4 {
		t.Errorf("expected no change while inactive, got %v", z)
	}
	// Next two-point frame starts the pinch from the real distance.
	if !tr.Active() {
		t.Error("expected pinch to begin once the distance is non-zero")
	}
}
