package zoom

// Tracker applies raw touch frames to a level.
//
// The pinch is active only while exactly two touches are down. Any change in
// touch count into or out of two re-bases the gesture.
type Tracker struct {
	gesture Gesture
	active  bool
	touches int
}

// Active reports whether a pinch is in progress.
func (t *Tracker) Active() bool {
	return t.active
}

// Touches consumes one frame of touch points and returns the new level.
// began reports a pinch that started on this frame, ended one that stopped.
func (t *Tracker) Touches(points []Point, current Level) (level Level, began, ended bool) {
	prev := t.touches
	t.touches = len(points)

	if len(points) != 2 {
		if t.active {
			t.active = false
			t.gesture.End()
			return current, false, true
		}
		return current, false, false
	}

	if prev != 2 || !t.active {
		g, ok := Begin(points[0], points[1], current)
		if !ok {
			return current, false, false
		}
		t.gesture = g
		t.active = true
		return current, true, false
	}

	return t.gesture.Update(points[0], points[1]), false, false
}

// Reset drops any in-progress gesture.
func (t *Tracker) Reset() {
	t.active = false
	t.touches = 0
	t.gesture = Gesture{}
}
