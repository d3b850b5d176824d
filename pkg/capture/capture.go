// Package capture acquires images from a camera device or a media library.
//
// Every Source returns an Image holding the encoded bytes and a locator the
// front end can display. Permission refusals and user cancellation are reported
// with ErrPermissionDenied and ErrCancelled; anything that produced incomplete
// data is an *Error matching ErrCaptureFailed.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"time"

	_ "golang.org/x/image/webp"
)

// Origin records where an image came from.
type Origin string

const (
	OriginCamera  Origin = "camera"
	OriginLibrary Origin = "library"
)

// Sentinel errors.
var (
	ErrPermissionDenied = errors.New("capture: permission denied")
	ErrCancelled        = errors.New("capture: cancelled")
	ErrCaptureFailed    = errors.New("capture: failed")
)

// Error reports a capture that returned unusable data.
type Error struct {
	Origin Origin
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("capture [%s]: %s: %v", e.Origin, e.Reason, e.Err)
	}
	return fmt.Sprintf("capture [%s]: %s", e.Origin, e.Reason)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrCaptureFailed) true for any *Error.
func (e *Error) Is(target error) bool {
	return target == ErrCaptureFailed
}

func failed(origin Origin, reason string, err error) error {
	return &Error{Origin: origin, Reason: reason, Err: err}
}

// Image is an acquired photo. It is not modified after creation.
type Image struct {
	data       []byte
	Locator    string
	MIMEType   string
	Origin     Origin
	Width      int
	Height     int
	CapturedAt time.Time
}

// NewImage validates data as a decodable image and wraps it.
func NewImage(data []byte, locator string, origin Origin) (*Image, error) {
	if len(data) == 0 {
		return nil, failed(origin, "no image data", nil)
	}
	if locator == "" {
		return nil, failed(origin, "no image locator", nil)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, failed(origin, "unreadable image", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, failed(origin, "empty image", nil)
	}

	owned := make([]byte, len(data))
	copy(owned, data)

	return &Image{
		data:       owned,
		Locator:    locator,
		MIMEType:   http.DetectContentType(owned),
		Origin:     origin,
		Width:      cfg.Width,
		Height:     cfg.Height,
		CapturedAt: time.Now(),
	}, nil
}

// Data returns a copy of the encoded image bytes.
func (i *Image) Data() []byte {
	out := make([]byte, len(i.data))
	copy(out, i.data)
	return out
}

// Size returns the encoded size in bytes.
func (i *Image) Size() int {
	return len(i.data)
}

// Source acquires one image per call.
type Source interface {
	Capture(ctx context.Context) (*Image, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (*Image, error)

// Capture calls f.
func (f SourceFunc) Capture(ctx context.Context) (*Image, error) {
	return f(ctx)
}
