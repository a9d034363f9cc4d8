package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

const (
	exitOK        = 0
	exitError     = 1
	exitUnchanged = 3
)

func main() {
	// Cancel an in-flight HEAD request or store write on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	app := newApp()
	err := app.root.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(exitError)
	}
	os.Exit(app.exitCode)
}
