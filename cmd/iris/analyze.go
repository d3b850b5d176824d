package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/fishmeister1/iris/pkg/capture"
)

// NewAnalyzeCommand returns the analyze subcommand.
func NewAnalyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Describe an image file",
		ArgsUsage: "<file>",
		Action:    runAnalyze,
	}
}

func runAnalyze(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: iris analyze <file>")
	}

	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.describe(ctx, os.Stdout, capture.FromPath(path))
}
