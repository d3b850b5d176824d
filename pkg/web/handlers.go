package web

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/fishmeister1/iris/pkg/camera"
	"github.com/fishmeister1/iris/pkg/capture"
	"github.com/fishmeister1/iris/pkg/hub"
	"github.com/fishmeister1/iris/pkg/session"
	"github.com/fishmeister1/iris/pkg/zoom"
)

// errNoCamera is returned when the server runs without a camera.
var errNoCamera = errors.New("web: camera unavailable")

// ZoomState is the zoom payload of the API and the event stream.
type ZoomState struct {
	Level         zoom.Level `json:"level"`
	Magnification int        `json:"magnification"`
	CropFactor    float64    `json:"crop_factor"`
	Pinching      bool       `json:"pinching"`
}

// CaptureResponse is returned when an image enters processing.
type CaptureResponse struct {
	CaptureID string           `json:"capture_id"`
	Session   session.Snapshot `json:"session"`
}

// ZoomStepRequest is the body of POST /api/zoom/step.
type ZoomStepRequest struct {
	Delta float64 `json:"delta"`
}

// ZoomTouchesRequest is one frame of touch points. An empty list ends the
// gesture.
type ZoomTouchesRequest struct {
	Touches []zoom.Point `json:"touches"`
}

func (s *Server) handleInfo(c *fiber.Ctx) error {
	return c.JSON(s.opts.Info)
}

func (s *Server) handleSession(c *fiber.Ctx) error {
	return c.JSON(s.opts.Session.Snapshot())
}

// handleSessionImage serves the image being analyzed or shown.
func (s *Server) handleSessionImage(c *fiber.Ctx) error {
	img := s.opts.Session.Image()
	if img == nil {
		return errorJSON(c, fiber.StatusNotFound, "no image")
	}
	c.Set(fiber.HeaderContentType, img.MIMEType)
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(img.Data())
}

func (s *Server) handleCapture(c *fiber.Ctx) error {
	if s.opts.Camera == nil {
		return writeError(c, errNoCamera)
	}
	return s.capture(c, s.opts.Camera)
}

// handleUpload takes a photo chosen from the library as multipart field "image".
func (s *Server) handleUpload(c *fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "missing image field")
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return writeError(c, err)
	}
	return s.capture(c, capture.NewBytesSource(data, fh.Filename, s.opts.Store))
}

func (s *Server) capture(c *fiber.Ctx, src capture.Source) error {
	id, err := s.opts.Session.Capture(c.UserContext(), src)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(CaptureResponse{
		CaptureID: id,
		Session:   s.opts.Session.Snapshot(),
	})
}

func (s *Server) handleCancel(c *fiber.Ctx) error {
	if err := s.opts.Session.Cancel(); err != nil {
		return writeError(c, err)
	}
	return c.JSON(s.opts.Session.Snapshot())
}

func (s *Server) handleReset(c *fiber.Ctx) error {
	if err := s.opts.Session.Reset(); err != nil {
		return writeError(c, err)
	}
	return c.JSON(s.opts.Session.Snapshot())
}

func (s *Server) handleDismissNotice(c *fiber.Ctx) error {
	s.opts.Session.DismissNotice()
	return c.JSON(s.opts.Session.Snapshot())
}

func (s *Server) zoomState() ZoomState {
	level := s.opts.Zoom.Level()
	return ZoomState{
		Level:         level,
		Magnification: zoom.Magnification(level),
		CropFactor:    zoom.CropFactor(level, s.opts.Settings.Config().MaxZoom),
		Pinching:      s.opts.Zoom.Pinching(),
	}
}

func (s *Server) handleZoom(c *fiber.Ctx) error {
	return c.JSON(s.zoomState())
}

func (s *Server) handleZoomStep(c *fiber.Ctx) error {
	var req ZoomStepRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid body")
	}
	s.opts.Zoom.Step(req.Delta)
	return c.JSON(s.zoomState())
}

func (s *Server) handleZoomTouches(c *fiber.Ctx) error {
	var req ZoomTouchesRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid body")
	}
	s.opts.Zoom.Touches(req.Touches)
	return c.JSON(s.zoomState())
}

func (s *Server) handleCamera(c *fiber.Ctx) error {
	return c.JSON(s.opts.Settings.Config())
}

// handleCameraUpdate applies a partial update, e.g. {"preset":"720p","quality":90}.
func (s *Server) handleCameraUpdate(c *fiber.Ctx) error {
	var params map[string]interface{}
	if err := c.BodyParser(&params); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid body")
	}
	if err := s.opts.Settings.UpdateConfig(params); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	cfg := s.opts.Settings.Config()
	s.publishCamera(cfg)
	return c.JSON(cfg)
}

func (s *Server) handleCameraFlip(c *fiber.Ctx) error {
	cfg, err := s.opts.Settings.Flip()
	if err != nil {
		return writeError(c, err)
	}
	s.publishCamera(cfg)
	return c.JSON(cfg)
}

// handlePreview returns one live frame at the current zoom.
func (s *Server) handlePreview(c *fiber.Ctx) error {
	if s.opts.Camera == nil {
		return writeError(c, errNoCamera)
	}
	data, err := s.opts.Camera.Preview(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "image/jpeg")
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(data)
}

func (s *Server) handleSessionWS(conn *websocket.Conn) {
	client := hub.NewClient(s.hub, conn)
	if client == nil {
		return
	}
	client.Run()
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrBusy), errors.Is(err, session.ErrInvalidTransition):
		return fiber.StatusConflict
	case errors.Is(err, capture.ErrPermissionDenied):
		return fiber.StatusForbidden
	case errors.Is(err, capture.ErrCancelled):
		return fiber.StatusBadRequest
	case errors.Is(err, capture.ErrCaptureFailed):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, errNoCamera), errors.Is(err, capture.ErrDeviceClosed):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, camera.ErrInvalidConfig):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func writeError(c *fiber.Ctx, err error) error {
	return errorJSON(c, statusFor(err), err.Error())
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
