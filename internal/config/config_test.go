package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Endpoint != DefaultEndpoint {
		t.Errorf("expected default endpoint, got %s", cfg.Endpoint)
	}
	if cfg.RequestTimeout != DefaultRequestTimeout {
		t.Errorf("expected %v timeout, got %v", DefaultRequestTimeout, cfg.RequestTimeout)
	}
	if cfg.JPEGQuality != 80 {
		t.Errorf("expected quality 80, got %d", cfg.JPEGQuality)
	}
	if cfg.ListenAddr() != ":8080" {
		t.Errorf("expected :8080, got %s", cfg.ListenAddr())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err != nil {
		t.Errorf("missing file should not fail: %v", err)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "iris.yaml")
	data := []byte("endpoint: http://file.example/llm\nport: \"9000\"\nrequest_timeout: 15s\nmax_zoom: 2.5\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("IRIS_PORT", "9100")
	t.Setenv("IRIS_JPEG_QUALITY", "65")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Endpoint != "http://file.example/llm" {
		t.Errorf("endpoint from file not applied: %s", cfg.Endpoint)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Errorf("expected 15s, got %v", cfg.RequestTimeout)
	}
	if cfg.MaxZoom != 2.5 {
		t.Errorf("expected max zoom 2.5, got %v", cfg.MaxZoom)
	}
	if cfg.Port != "9100" {
		t.Errorf("env should override file port, got %s", cfg.Port)
	}
	if cfg.JPEGQuality != 65 {
		t.Errorf("expected quality 65, got %d", cfg.JPEGQuality)
	}
}

func TestLoadInvalidEnv(t *testing.T) {
	t.Setenv("IRIS_REQUEST_TIMEOUT", "soon")
	if _, err := Load(""); err == nil {
		t.Error("expected error for bad duration")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty endpoint", func(c *Config) { c.Endpoint = " " }, true},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, true},
		{"quality too high", func(c *Config) { c.JPEGQuality = 101 }, true},
		{"max zoom below one", func(c *Config) { c.MaxZoom = 0.5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
