// Package main is the entry point for the taskboard CLI.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"taskboard/internal/backend/googletasks"
	"taskboard/internal/backend/rest"
	"taskboard/internal/cli"
	"taskboard/internal/commands"
	"taskboard/internal/config"
	"taskboard/internal/service"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, newService)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}

// newService builds the backend named by cfg.Backend.
func newService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.Service, error) {
	if cfg.Backend == config.BackendGoogleTasks {
		return googletasks.New(ctx, cfg, logger)
	}
	return rest.New(ctx, cfg, logger)
}
