// Command iris points a camera at something and describes it.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fishmeister1/iris/internal/log"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := NewRootCommand()
	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}
