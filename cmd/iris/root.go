package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/fishmeister1/iris/internal/config"
	"github.com/fishmeister1/iris/internal/log"
	"github.com/fishmeister1/iris/pkg/camera"
	"github.com/fishmeister1/iris/pkg/capture"
	"github.com/fishmeister1/iris/pkg/session"
	"github.com/fishmeister1/iris/pkg/vision"
	"github.com/fishmeister1/iris/pkg/web"
	"github.com/fishmeister1/iris/pkg/zoom"
)

// offlineDescription is returned for every image with --offline.
const offlineDescription = "Offline mode: no analysis was performed."

// NewRootCommand returns the top-level CLI command.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:    "iris",
		Usage:   "Describe what the camera sees",
		Version: web.DefaultInfo.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
				Value:   "iris.yaml",
				Sources: cli.EnvVars("IRIS_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "offline",
				Usage: "Skip the inference endpoint and return a placeholder description",
			},
		},
		Commands: []*cli.Command{
			NewServeCommand(),
			NewAnalyzeCommand(),
			NewSnapCommand(),
		},
	}
}

// app holds the components shared by the subcommands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	analyzer vision.Analyzer
	zoom     *zoom.Controller
	settings *camera.Manager
	store    *capture.Store
	session  *session.Machine

	closers []io.Closer
}

func setup(cmd *cli.Command) (*app, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	log.Init(cfg.LogLevel)
	logger := log.L()

	a := &app{cfg: cfg, logger: logger}

	if cmd.Bool("offline") {
		a.analyzer = vision.NewMock(offlineDescription)
		log.Warn("offline mode, images will not be analyzed")
	} else {
		client, err := vision.NewClient(
			vision.WithEndpoint(cfg.Endpoint),
			vision.WithAPIKey(cfg.APIKey),
			vision.WithTimeout(cfg.RequestTimeout),
			vision.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("vision client: %w", err)
		}
		a.analyzer = client
		a.closers = append(a.closers, client)
	}

	camCfg := camera.DefaultConfig()
	camCfg.BackDevice = cfg.CameraDevice
	camCfg.FrontDevice = cfg.FrontCameraDevice
	camCfg.Quality = cfg.JPEGQuality
	camCfg.MaxZoom = cfg.MaxZoom
	if errs := camCfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("camera config: %s", strings.Join(errs, "; "))
	}
	a.settings = camera.NewManager(camCfg)

	a.store, err = capture.NewStore(cfg.CaptureDir)
	if err != nil {
		return nil, err
	}

	a.zoom = zoom.NewController(logger)
	a.session, err = session.New(session.Options{
		Analyzer: a.analyzer,
		Zoom:     a.zoom,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.session)
	return a, nil
}

// openCamera creates the live camera source. Device changes from the
// settings manager reopen it.
func (a *app) openCamera() (*capture.CameraSource, error) {
	src, err := capture.NewCameraSource(capture.CameraOptions{
		Open:     capture.OpenDevice,
		Settings: a.settings,
		Zoom:     a.zoom,
		Store:    a.store,
		Logger:   a.logger,
	})
	if err != nil {
		return nil, err
	}
	a.settings.OnConfigChange = func(old, cfg camera.Config) error {
		if old.DeviceID() == cfg.DeviceID() {
			return nil
		}
		log.Info("switching camera", "facing", cfg.Facing, "device", cfg.DeviceID())
		return src.Reopen()
	}
	a.closers = append(a.closers, src)
	return src, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			log.Warn("close", "error", err)
		}
	}
}

// describe runs one capture through the session and prints the outcome.
func (a *app) describe(ctx context.Context, w io.Writer, src capture.Source) error {
	done := make(chan session.Snapshot, 1)
	unsubscribe := a.session.Subscribe(func(s session.Snapshot) {
		if s.Phase == session.Processing {
			return
		}
		select {
		case done <- s:
		default:
		}
	})
	defer unsubscribe()

	if _, err := a.session.Capture(ctx, src); err != nil {
		if errors.Is(err, capture.ErrCancelled) {
			return errors.New("no image selected")
		}
		return err
	}

	var snap session.Snapshot
	select {
	case snap = <-done:
	case <-ctx.Done():
		a.session.Cancel()
		return ctx.Err()
	}

	if snap.Result == nil {
		if snap.Notice != nil {
			return fmt.Errorf("%s: %s", snap.Notice.Title, snap.Notice.Message)
		}
		return errors.New("analysis did not complete")
	}
	printResult(w, snap.Result)
	return nil
}

func printResult(w io.Writer, res *vision.Result) {
	fmt.Fprintln(w, res.Description)
	if !res.HasSources() {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Sources:")
	for i, src := range res.Sources {
		fmt.Fprintf(w, "  %d. %s <%s>\n", i+1, src.Title, src.URL)
	}
}
