package httpc

import (
	"testing"
	"time"
)

func TestNewClientTimeout(t *testing.T) {
	c := NewClient(5 * time.Second)
	if c.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", c.Timeout)
	}
	if c.Transport == nil {
		t.Error("expected a transport")
	}
}

func TestNewClientDefaultTimeout(t *testing.T) {
	c := NewClient(0)
	if c.Timeout != DefaultTimeout {
		t.Errorf("expected default timeout %v, got %v", DefaultTimeout, c.Timeout)
	}
}
