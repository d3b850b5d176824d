// Package web serves the Iris HTTP API and the live session stream.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/bep/debounce"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/fishmeister1/iris/pkg/camera"
	"github.com/fishmeister1/iris/pkg/capture"
	"github.com/fishmeister1/iris/pkg/hub"
	"github.com/fishmeister1/iris/pkg/session"
	"github.com/fishmeister1/iris/pkg/zoom"
)

// Event types on /ws/session.
const (
	EventSession = "session"
	EventZoom    = "zoom"
	EventCamera  = "camera"
)

// DefaultZoomDebounce coalesces zoom events during a pinch.
const DefaultZoomDebounce = 50 * time.Millisecond

// DefaultPreviewInterval is the period of binary preview frames on
// /ws/session while the camera is showing.
const DefaultPreviewInterval = 250 * time.Millisecond

// Info identifies the running service.
type Info struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// DefaultInfo is reported by GET /api/info.
var DefaultInfo = Info{Name: "Iris", Version: "1.0.0"}

// Camera is a live camera that can also render preview frames.
type Camera interface {
	capture.Source
	Preview(ctx context.Context) ([]byte, error)
}

// Options configures a Server.
type Options struct {
	Session  *session.Machine
	Zoom     *zoom.Controller
	Settings *camera.Manager

	// Camera is optional; capture and preview return 503 without it.
	Camera Camera

	// Store persists uploads. Optional.
	Store *capture.Store

	// WebDir holds the static front end. Optional.
	WebDir string

	Info         Info
	ZoomDebounce time.Duration

	// PreviewInterval paces the preview stream. Negative disables it.
	PreviewInterval time.Duration

	Logger *slog.Logger
}

// Server is the Iris web surface.
type Server struct {
	app    *fiber.App
	hub    *hub.Hub
	opts   Options
	logger *slog.Logger

	zoomDebounced func(func())
	unsubscribe   func()

	ctx    context.Context
	cancel context.CancelFunc
	closed atomic.Bool
}

// NewServer builds the app, starts the event hub and subscribes to the
// session and zoom controller.
func NewServer(opts Options) (*Server, error) {
	if opts.Session == nil {
		return nil, errors.New("web: session required")
	}
	if opts.Zoom == nil {
		opts.Zoom = zoom.NewController(opts.Logger)
	}
	if opts.Settings == nil {
		opts.Settings = camera.NewManager(camera.DefaultConfig())
	}
	if opts.Info.Name == "" {
		opts.Info = DefaultInfo
	}
	if opts.ZoomDebounce <= 0 {
		opts.ZoomDebounce = DefaultZoomDebounce
	}
	if opts.PreviewInterval == 0 {
		opts.PreviewInterval = DefaultPreviewInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		hub:           hub.New("session", opts.Logger),
		opts:          opts,
		logger:        opts.Logger.With("component", "web.server"),
		zoomDebounced: debounce.New(opts.ZoomDebounce),
		ctx:           ctx,
		cancel:        cancel,
	}
	go s.hub.Run(ctx)

	app := fiber.New(fiber.Config{
		AppName:               opts.Info.Name,
		DisableStartupMessage: true,
		BodyLimit:             32 * 1024 * 1024,
	})
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(requestLogger(s.logger))

	api := app.Group("/api")
	api.Get("/info", s.handleInfo)
	api.Get("/session", s.handleSession)
	api.Get("/session/image", s.handleSessionImage)
	api.Post("/capture", s.handleCapture)
	api.Post("/upload", s.handleUpload)
	api.Post("/cancel", s.handleCancel)
	api.Post("/reset", s.handleReset)
	api.Post("/notice/dismiss", s.handleDismissNotice)
	api.Get("/zoom", s.handleZoom)
	api.Post("/zoom/step", s.handleZoomStep)
	api.Post("/zoom/touches", s.handleZoomTouches)
	api.Get("/camera", s.handleCamera)
	api.Patch("/camera", s.handleCameraUpdate)
	api.Post("/camera/flip", s.handleCameraFlip)
	api.Get("/preview", s.handlePreview)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/session", websocket.New(s.handleSessionWS))

	if opts.WebDir != "" {
		app.Static("/", opts.WebDir)
	}
	s.app = app

	s.unsubscribe = opts.Session.Subscribe(s.publishSession)
	opts.Zoom.OnChange = func(zoom.Level) { s.zoomDebounced(s.publishZoom) }
	opts.Zoom.OnGesture = func(bool) { s.publishZoom() }

	s.publishCamera(opts.Settings.Config())
	s.publishSession(opts.Session.Snapshot())
	s.publishZoom()

	if opts.Camera != nil && opts.PreviewInterval > 0 {
		go s.streamPreview(ctx, opts.PreviewInterval)
	}
	return s, nil
}

// App returns the fiber app, for tests and embedding.
func (s *Server) App() *fiber.App {
	return s.app
}

// Hub returns the session event hub.
func (s *Server) Hub() *hub.Hub {
	return s.hub
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return s.app.Listen(addr)
}

// Serve serves on an existing listener until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("listening", "addr", ln.Addr().String())
	return s.app.Listener(ln)
}

// Run serves on addr until ctx is done, then shuts down.
func (s *Server) Run(ctx context.Context, addr string) error {
	errc := make(chan error, 1)
	go func() { errc <- s.Listen(addr) }()

	select {
	case err := <-errc:
		s.Shutdown()
		return err
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown stops the server, the hub and the subscriptions.
func (s *Server) Shutdown() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.unsubscribe()
	s.cancel()
	return s.app.Shutdown()
}

func (s *Server) publishSession(snap session.Snapshot) {
	if s.closed.Load() {
		return
	}
	if err := s.hub.Publish(EventSession, snap); err != nil {
		s.logger.Error("publish session", "error", err)
	}
}

func (s *Server) publishZoom() {
	if s.closed.Load() {
		return
	}
	if err := s.hub.Publish(EventZoom, s.zoomState()); err != nil {
		s.logger.Error("publish zoom", "error", err)
	}
}

func (s *Server) publishCamera(cfg camera.Config) {
	if s.closed.Load() {
		return
	}
	if err := s.hub.Publish(EventCamera, cfg); err != nil {
		s.logger.Error("publish camera", "error", err)
	}
}

// streamPreview sends live frames as binary messages while someone is
// watching and the session is on the camera.
func (s *Server) streamPreview(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	var lastErr string
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if s.hub.ClientCount() == 0 || s.opts.Session.Phase() != session.Capturing {
			continue
		}

		data, err := s.opts.Camera.Preview(ctx)
		if err != nil {
			if err.Error() != lastErr {
				s.logger.Warn("preview frame", "error", err)
				lastErr = err.Error()
			}
			continue
		}
		lastErr = ""
		s.hub.BroadcastBinary(data)
	}
}

// requestLogger logs each request through slog.
func requestLogger(logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		logger.Debug("request",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration", time.Since(start),
		)
		return err
	}
}
