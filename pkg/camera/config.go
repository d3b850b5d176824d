// Package camera provides runtime-configurable camera settings for iris.
// Settings can be changed from the web surface while the preview is running.
package camera

import "fmt"

// Facing selects which physical camera is used.
type Facing string

const (
	FacingBack  Facing = "back"
	FacingFront Facing = "front"
)

// Config holds camera configuration parameters.
type Config struct {
	Facing      Facing `json:"facing"`
	BackDevice  int    `json:"back_device"`  // OS device index of the back camera
	FrontDevice int    `json:"front_device"` // OS device index of the front camera

	// Output frame size. Captures larger than this are scaled down to fit.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Quality is the JPEG quality 1-100.
	Quality int `json:"quality"`

	// MaxZoom is the digital crop factor at zoom level 1.0.
	MaxZoom float64 `json:"max_zoom"`
}

// Limits.
const (
	MinWidth   = 160
	MinHeight  = 120
	MaxWidth   = 4608
	MaxHeight  = 2592
	MaxZoomCap = 10.0
)

// DefaultConfig returns the configuration matching the app's capture settings:
// back camera, quality 80.
func DefaultConfig() Config {
	return Config{
		Facing:      FacingBack,
		BackDevice:  0,
		FrontDevice: 1,
		Width:       1920,
		Height:      1080,
		Quality:     80,
		MaxZoom:     4.0,
	}
}

// DeviceID returns the device index for the current facing.
func (c Config) DeviceID() int {
	if c.Facing == FacingFront {
		return c.FrontDevice
	}
	return c.BackDevice
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Facing != FacingBack && c.Facing != FacingFront {
		errors = append(errors, "facing must be back or front")
	}
	if c.BackDevice < 0 || c.FrontDevice < 0 {
		errors = append(errors, "device indices must not be negative")
	}
	if c.Width < MinWidth || c.Width > MaxWidth {
		errors = append(errors, fmt.Sprintf("width must be between %d and %d", MinWidth, MaxWidth))
	}
	if c.Height < MinHeight || c.Height > MaxHeight {
		errors = append(errors, fmt.Sprintf("height must be between %d and %d", MinHeight, MaxHeight))
	}
	if c.Quality < 1 || c.Quality > 100 {
		errors = append(errors, "quality must be between 1 and 100")
	}
	if c.MaxZoom < 1.0 || c.MaxZoom > MaxZoomCap {
		errors = append(errors, "max_zoom must be between 1.0 and 10.0")
	}

	return errors
}
