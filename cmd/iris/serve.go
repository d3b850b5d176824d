package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/fishmeister1/iris/internal/log"
	"github.com/fishmeister1/iris/pkg/web"
)

// captureRetention is how long stored captures are kept between runs.
const captureRetention = 24 * time.Hour

// NewServeCommand returns the serve subcommand.
func NewServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web app with the live camera",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "port",
				Usage: "Listen port (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "no-camera",
				Usage: "Serve without a camera; only uploads are analyzed",
			},
		},
		Action: runServe,
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if p := cmd.String("port"); p != "" {
		a.cfg.Port = p
	}

	if n, err := a.store.Prune(captureRetention); err != nil {
		log.Warn("prune captures", "error", err)
	} else if n > 0 {
		log.Info("pruned old captures", "count", n, "dir", a.store.Dir())
	}

	opts := web.Options{
		Session:  a.session,
		Zoom:     a.zoom,
		Settings: a.settings,
		Store:    a.store,
		WebDir:   a.cfg.WebDir,
		Logger:   a.logger,
	}

	if !cmd.Bool("no-camera") {
		src, err := a.openCamera()
		if err != nil {
			return err
		}
		if _, err := src.Preview(ctx); err != nil {
			log.Warn("camera unavailable, serving uploads only", "error", err)
		} else {
			opts.Camera = src
		}
	}

	srv, err := web.NewServer(opts)
	if err != nil {
		return err
	}
	log.Info("iris ready", "url", "http://localhost"+a.cfg.ListenAddr(), "camera", opts.Camera != nil)
	return srv.Run(ctx, a.cfg.ListenAddr())
}
