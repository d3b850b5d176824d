package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/fishmeister1/iris/pkg/camera"
)

// NewSnapCommand returns the snap subcommand.
func NewSnapCommand() *cli.Command {
	return &cli.Command{
		Name:  "snap",
		Usage: "Take a photo with the camera and describe it",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "front",
				Usage: "Use the front camera",
			},
			&cli.FloatFlag{
				Name:  "zoom",
				Usage: "Zoom level between 0 and 1",
			},
			&cli.StringFlag{
				Name:  "preset",
				Usage: fmt.Sprintf("Camera preset (%v)", camera.PresetNames()),
			},
		},
		Action: runSnap,
	}
}

func runSnap(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	params := map[string]interface{}{}
	if p := cmd.String("preset"); p != "" {
		params["preset"] = p
		params["back_device"] = a.cfg.CameraDevice
		params["front_device"] = a.cfg.FrontCameraDevice
		params["max_zoom"] = a.cfg.MaxZoom
	}
	if cmd.Bool("front") {
		params["facing"] = string(camera.FacingFront)
	}
	if len(params) > 0 {
		if err := a.settings.UpdateConfig(params); err != nil {
			return err
		}
	}
	a.zoom.Set(cmd.Float("zoom"))

	src, err := a.openCamera()
	if err != nil {
		return err
	}
	if err := a.describe(ctx, os.Stdout, src); err != nil {
		return err
	}
	if img := a.session.Image(); img != nil {
		fmt.Fprintf(os.Stderr, "saved %s\n", img.Locator)
	}
	return nil
}
