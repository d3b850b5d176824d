package camera

// Preset names for common configurations.
const (
	PresetDefault = "default"
	PresetLow     = "low"
	Preset720p    = "720p"
	Preset1080p   = "1080p"
	PresetSelfie  = "selfie"
)

// Presets returns all available preset configurations.
func Presets() map[string]Config {
	return map[string]Config{
		PresetDefault: DefaultConfig(),
		PresetLow:     LowConfig(),
		Preset720p:    HD720Config(),
		Preset1080p:   HD1080Config(),
		PresetSelfie:  SelfieConfig(),
	}
}

// PresetNames returns the list of available preset names.
func PresetNames() []string {
	return []string{PresetDefault, PresetLow, Preset720p, Preset1080p, PresetSelfie}
}

// GetPreset returns a preset config by name, or nil if not found.
func GetPreset(name string) *Config {
	if cfg, ok := Presets()[name]; ok {
		return &cfg
	}
	return nil
}

// LowConfig keeps uploads small on slow links.
func LowConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 640
	cfg.Height = 480
	cfg.Quality = 70
	return cfg
}

// HD720Config returns 720p HD configuration.
func HD720Config() Config {
	cfg := DefaultConfig()
	cfg.Width = 1280
	cfg.Height = 720
	return cfg
}

// HD1080Config returns 1080p configuration.
func HD1080Config() Config {
	return DefaultConfig()
}

// SelfieConfig uses the front camera with a shallow zoom range.
func SelfieConfig() Config {
	cfg := HD720Config()
	cfg.Facing = FacingFront
	cfg.MaxZoom = 2.0
	return cfg
}
