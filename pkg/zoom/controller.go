package zoom

import (
	"log/slog"
	"sync"
)

// Controller holds the current zoom level for the live preview.
type Controller struct {
	mu      sync.Mutex
	level   Level
	tracker Tracker
	logger  *slog.Logger

	// OnChange is called with the new level after every change.
	OnChange func(Level)

	// OnGesture is called when a pinch starts (true) or stops (false),
	// so controls can be dimmed while pinching.
	OnGesture func(active bool)
}

// NewController creates a controller at Min.
func NewController(logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{logger: logger.With("component", "zoom.controller")}
}

// Level returns the current level.
func (c *Controller) Level() Level {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.level
}

// Pinching reports whether a two-finger gesture is in progress.
func (c *Controller) Pinching() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker.Active()
}

// Set clamps and stores v.
func (c *Controller) Set(v float64) Level {
	return c.apply(func(Level) Level { return Clamp(v) })
}

// Step moves the level by delta.
func (c *Controller) Step(delta float64) Level {
	return c.apply(func(z Level) Level { return Step(z, delta) })
}

// Reset returns the level to Min and drops any gesture.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.tracker.Reset()
	c.mu.Unlock()
	c.apply(func(Level) Level { return Min })
}

// Touches feeds one frame of touch points through the tracker.
func (c *Controller) Touches(points []Point) Level {
	c.mu.Lock()
	old := c.level
	next, began, ended := c.tracker.Touches(points, old)
	c.level = next
	onChange, onGesture := c.OnChange, c.OnGesture
	c.mu.Unlock()

	if began || ended {
		c.logger.Debug("pinch", "active", began, "level", next)
		if onGesture != nil {
			onGesture(began)
		}
	}
	if next != old && onChange != nil {
		onChange(next)
	}
	return next
}

func (c *Controller) apply(fn func(Level) Level) Level {
	c.mu.Lock()
	old := c.level
	c.level = fn(old)
	next := c.level
	onChange := c.OnChange
	c.mu.Unlock()

	if next != old && onChange != nil {
		onChange(next)
	}
	return next
}
