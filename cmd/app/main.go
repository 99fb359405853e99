// Command app serves the local tarot companion API next to the browser view.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tarot: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := initializeApp()
	if err != nil {
		return fmt.Errorf("wire companion: %w", err)
	}
	if err := app.Run(ctx); err != nil {
		return fmt.Errorf("companion stopped: %w", err)
	}
	return nil
}
