package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/fishmeister1/iris/pkg/camera"
	"github.com/fishmeister1/iris/pkg/zoom"
)

// ErrDeviceClosed is returned after Close.
var ErrDeviceClosed = errors.New("capture: camera closed")

// Device yields raw frames from a camera.
type Device interface {
	Read() (image.Image, error)
	Close() error
}

// DeviceOpener opens the camera at the given OS index.
type DeviceOpener func(id int) (Device, error)

// CameraSource is the live camera source. Frames are cropped to the current
// zoom level, scaled to the configured size and encoded as JPEG.
type CameraSource struct {
	open     DeviceOpener
	settings *camera.Manager
	zoom     *zoom.Controller
	store    *Store
	logger   *slog.Logger

	mu       sync.Mutex
	device   Device
	deviceID int
	closed   bool
}

// CameraOptions configures a CameraSource.
type CameraOptions struct {
	Open     DeviceOpener
	Settings *camera.Manager
	Zoom     *zoom.Controller
	Store    *Store
	Logger   *slog.Logger
}

// NewCameraSource creates a camera source. The device is opened lazily.
func NewCameraSource(opts CameraOptions) (*CameraSource, error) {
	if opts.Open == nil {
		return nil, errors.New("capture: device opener required")
	}
	if opts.Store == nil {
		return nil, errors.New("capture: store required")
	}
	if opts.Settings == nil {
		opts.Settings = camera.NewManager(camera.DefaultConfig())
	}
	if opts.Zoom == nil {
		opts.Zoom = zoom.NewController(opts.Logger)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CameraSource{
		open:     opts.Open,
		settings: opts.Settings,
		zoom:     opts.Zoom,
		store:    opts.Store,
		logger:   logger.With("component", "capture.camera"),
		deviceID: -1,
	}, nil
}

// Capture takes a photo at the current zoom level.
func (c *CameraSource) Capture(ctx context.Context) (*Image, error) {
	data, err := c.frame(ctx)
	if err != nil {
		return nil, err
	}

	loc, err := c.store.Save(data, ".jpg")
	if err != nil {
		return nil, failed(OriginCamera, "store frame", err)
	}

	img, err := NewImage(data, loc, OriginCamera)
	if err != nil {
		return nil, err
	}
	c.logger.Info("photo taken", "bytes", img.Size(), "zoom", c.zoom.Level())
	return img, nil
}

// Preview returns one JPEG frame framed like a capture, without storing it.
func (c *CameraSource) Preview(ctx context.Context) ([]byte, error) {
	return c.frame(ctx)
}

// Reopen closes the current device so the next frame uses the configured facing.
func (c *CameraSource) Reopen() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeDeviceLocked()
}

// Close releases the device. Further captures fail with ErrDeviceClosed.
func (c *CameraSource) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return c.closeDeviceLocked()
}

func (c *CameraSource) closeDeviceLocked() error {
	if c.device == nil {
		return nil
	}
	err := c.device.Close()
	c.device = nil
	c.deviceID = -1
	return err
}

func (c *CameraSource) frame(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, ErrCancelled
	}

	cfg := c.settings.Config()
	raw, err := c.read(cfg.DeviceID())
	if err != nil {
		return nil, err
	}

	factor := zoom.CropFactor(c.zoom.Level(), cfg.MaxZoom)
	out := Frame(raw, factor, cfg.Width, cfg.Height)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG, imaging.JPEGQuality(cfg.Quality)); err != nil {
		return nil, failed(OriginCamera, "encode frame", err)
	}
	return buf.Bytes(), nil
}

func (c *CameraSource) read(id int) (image.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrDeviceClosed
	}
	if c.device != nil && c.deviceID != id {
		c.closeDeviceLocked()
	}
	if c.device == nil {
		dev, err := c.open(id)
		if err != nil {
			if errors.Is(err, ErrPermissionDenied) {
				return nil, err
			}
			return nil, failed(OriginCamera, fmt.Sprintf("open device %d", id), err)
		}
		c.device = dev
		c.deviceID = id
		c.logger.Debug("camera opened", "device", id)
	}

	img, err := c.device.Read()
	if err != nil {
		return nil, failed(OriginCamera, "read frame", err)
	}
	if img == nil || img.Bounds().Empty() {
		return nil, failed(OriginCamera, "empty frame", nil)
	}
	return img, nil
}

// Frame applies a centred digital zoom crop and scales the result down to fit
// maxW x maxH. A factor of 1 leaves the framing unchanged.
func Frame(src image.Image, factor float64, maxW, maxH int) image.Image {
	out := src
	if factor > 1 {
		b := src.Bounds()
		w := int(float64(b.Dx()) / factor)
		h := int(float64(b.Dy()) / factor)
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		out = imaging.CropCenter(src, w, h)
	}

	b := out.Bounds()
	if maxW > 0 && maxH > 0 && (b.Dx() > maxW || b.Dy() > maxH) {
		out = imaging.Fit(out, maxW, maxH, imaging.Lanczos)
	}
	return out
}
