// Package zoom turns pinch gestures and step presses into a bounded zoom level.
//
// The arithmetic lives in pure functions (Begin, Gesture.Update, Step) that take
// all gesture state as explicit values. Tracker layers the touch-count rules on
// top, and Controller is the concurrency-safe holder shared by the web surface
// and the camera source.
package zoom

import "math"

// Level is a normalized zoom value in [Min, Max].
type Level float64

const (
	// Min is the widest framing.
	Min Level = 0.0

	// Max is the tightest framing.
	Max Level = 1.0

	// StepSize is the delta applied by the + and - controls.
	StepSize = 0.1

	// Sensitivity scales the pinch distance ratio into a zoom delta.
	Sensitivity = 0.5

	// MinDistance guards against dividing by a collapsed pinch.
	MinDistance = 1e-6
)

// Point is a touch location in screen coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func (p Point) valid() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Clamp bounds v to [Min, Max]. NaN maps to Min.
func Clamp(v float64) Level {
	switch {
	case math.IsNaN(v), v < float64(Min):
		return Min
	case v > float64(Max):
		return Max
	}
	return Level(v)
}

// Step returns z moved by delta and clamped.
func Step(z Level, delta float64) Level {
	return Clamp(float64(z) + delta)
}

// Gesture is the state captured when a two-finger pinch starts.
type Gesture struct {
	StartDistance float64
	StartLevel    Level
}

// Begin starts a pinch at the two touch points with the current level.
// It reports false when the points are too close together to divide by.
func Begin(a, b Point, current Level) (Gesture, bool) {
	if !a.valid() || !b.valid() {
		return Gesture{}, false
	}
	d0 := Distance(a, b)
	if d0 < MinDistance {
		return Gesture{}, false
	}
	return Gesture{StartDistance: d0, StartLevel: Clamp(float64(current))}, true
}

// Update returns the level for the current touch points.
// Invalid input leaves the gesture's start level unchanged.
func (g Gesture) Update(a, b Point) Level {
	if g.StartDistance < MinDistance || !a.valid() || !b.valid() {
		return g.StartLevel
	}
	ratio := Distance(a, b) / g.StartDistance
	return Clamp(float64(g.StartLevel) + (ratio-1)*Sensitivity)
}

// End finishes the gesture. It has no numeric effect.
func (g Gesture) End() {}

// Magnification is the label shown next to the zoom track, e.g. 1 for "1x".
func Magnification(z Level) int {
	return int(math.Round(float64(z)*10 + 1))
}

// CropFactor maps a level onto a digital crop factor in [1, maxZoom].
func CropFactor(z Level, maxZoom float64) float64 {
	if maxZoom < 1 {
		maxZoom = 1
	}
	return 1 + float64(Clamp(float64(z)))*(maxZoom-1)
}
