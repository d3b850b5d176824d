package camera

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrInvalidConfig is returned for rejected settings.
var ErrInvalidConfig = errors.New("camera: invalid config")

// Manager holds the current camera configuration and handles updates.
type Manager struct {
	config Config
	mu     sync.RWMutex

	// OnConfigChange is called after a change is stored, e.g. to reopen the device.
	OnConfigChange func(old, cfg Config) error
}

// NewManager creates a new camera manager with the given config.
func NewManager(cfg Config) *Manager {
	return &Manager{config: cfg}
}

// Config returns the current camera configuration.
func (m *Manager) Config() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// DeviceID returns the device index for the current facing.
func (m *Manager) DeviceID() int {
	return m.Config().DeviceID()
}

// SetConfig validates and stores cfg.
func (m *Manager) SetConfig(cfg Config) error {
	if errs := cfg.Validate(); len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}

	m.mu.Lock()
	old := m.config
	m.config = cfg
	callback := m.OnConfigChange
	m.mu.Unlock()

	if callback != nil {
		if err := callback(old, cfg); err != nil {
			return fmt.Errorf("failed to apply config: %w", err)
		}
	}

	return nil
}

// Flip switches between the back and front camera.
func (m *Manager) Flip() (Config, error) {
	cfg := m.Config()
	if cfg.Facing == FacingBack {
		cfg.Facing = FacingFront
	} else {
		cfg.Facing = FacingBack
	}
	if err := m.SetConfig(cfg); err != nil {
		return m.Config(), err
	}
	return cfg, nil
}

// UpdateConfig updates specific fields of the configuration.
// Accepts a map of field names to values, as decoded from JSON.
func (m *Manager) UpdateConfig(params map[string]interface{}) error {
	cfg := m.Config()

	if presetName, ok := params["preset"].(string); ok {
		preset := GetPreset(presetName)
		if preset == nil {
			return fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, presetName)
		}
		cfg = *preset
	}

	for key, value := range params {
		switch key {
		case "preset":
		case "facing":
			if v, ok := value.(string); ok {
				cfg.Facing = Facing(v)
			}
		case "back_device":
			if v, ok := toInt(value); ok {
				cfg.BackDevice = v
			}
		case "front_device":
			if v, ok := toInt(value); ok {
				cfg.FrontDevice = v
			}
		case "width":
			if v, ok := toInt(value); ok {
				cfg.Width = v
			}
		case "height":
			if v, ok := toInt(value); ok {
				cfg.Height = v
			}
		case "quality":
			if v, ok := toInt(value); ok {
				cfg.Quality = v
			}
		case "max_zoom":
			if v, ok := toFloat(value); ok {
				cfg.MaxZoom = v
			}
		default:
			return fmt.Errorf("%w: unknown setting %q", ErrInvalidConfig, key)
		}
	}

	return m.SetConfig(cfg)
}

// Helper functions for type conversion

func toInt(v interface{}) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		return int(val), true
	case json.Number:
		i, err := val.Int64()
		if err == nil {
			return int(i), true
		}
	}
	return 0, false
}

func toFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		if err == nil {
			return f, true
		}
	}
	return 0, false
}
