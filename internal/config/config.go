// Package config loads iris runtime configuration.
//
// Values are resolved in three layers: built-in defaults, an optional YAML file,
// then IRIS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultEndpoint       = "https://toolkit.rork.com/text/llm/"
	DefaultRequestTimeout = 60 * time.Second
	DefaultPort           = "8080"
	DefaultWebDir         = "./web"
	DefaultJPEGQuality    = 80
	DefaultMaxZoom        = 4.0
	DefaultLogLevel       = "info"
)

// Config holds everything the iris commands need.
type Config struct {
	Endpoint       string        `yaml:"endpoint"`
	APIKey         string        `yaml:"api_key"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	Port       string `yaml:"port"`
	WebDir     string `yaml:"web_dir"`
	CaptureDir string `yaml:"capture_dir"`

	CameraDevice      int     `yaml:"camera_device"`
	FrontCameraDevice int     `yaml:"front_camera_device"`
	JPEGQuality       int     `yaml:"jpeg_quality"`
	MaxZoom           float64 `yaml:"max_zoom"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Endpoint:          DefaultEndpoint,
		RequestTimeout:    DefaultRequestTimeout,
		Port:              DefaultPort,
		WebDir:            DefaultWebDir,
		CaptureDir:        filepath.Join(os.TempDir(), "iris"),
		CameraDevice:      0,
		FrontCameraDevice: 1,
		JPEGQuality:       DefaultJPEGQuality,
		MaxZoom:           DefaultMaxZoom,
		LogLevel:          DefaultLogLevel,
	}
}

// Load resolves the configuration. path may be empty; a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("unmarshal config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays IRIS_* environment variables.
func (c *Config) applyEnv() error {
	if v := os.Getenv("IRIS_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("IRIS_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("IRIS_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("IRIS_REQUEST_TIMEOUT: %w", err)
		}
		c.RequestTimeout = d
	}
	if v := os.Getenv("IRIS_PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("IRIS_WEB_DIR"); v != "" {
		c.WebDir = v
	}
	if v := os.Getenv("IRIS_CAPTURE_DIR"); v != "" {
		c.CaptureDir = v
	}
	if err := envInt("IRIS_CAMERA_DEVICE", &c.CameraDevice); err != nil {
		return err
	}
	if err := envInt("IRIS_FRONT_CAMERA_DEVICE", &c.FrontCameraDevice); err != nil {
		return err
	}
	if err := envInt("IRIS_JPEG_QUALITY", &c.JPEGQuality); err != nil {
		return err
	}
	if v := os.Getenv("IRIS_MAX_ZOOM"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("IRIS_MAX_ZOOM: %w", err)
		}
		c.MaxZoom = f
	}
	if v := os.Getenv("IRIS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Endpoint) == "" {
		problems = append(problems, "endpoint is required")
	}
	if c.RequestTimeout <= 0 {
		problems = append(problems, "request_timeout must be positive")
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		problems = append(problems, "jpeg_quality must be between 1 and 100")
	}
	if c.MaxZoom < 1 {
		problems = append(problems, "max_zoom must be at least 1")
	}
	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ListenAddr returns the address the web surface binds to.
func (c *Config) ListenAddr() string {
	return ":" + c.Port
}
