package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/threadline-app/threadline/internal/infrastructure/config"
	"github.com/threadline-app/threadline/internal/infrastructure/host/socket"
	"github.com/threadline-app/threadline/internal/infrastructure/logging"
)

// Deps holds what editor commands need: the host connection plus session
// scope.
type Deps struct {
	Config     *config.Config
	Client     *socket.Client
	Logger     *slog.Logger
	TimelineID string
}

// withDeps loads config, connects to the host socket, and calls the provided
// function. It handles cleanup automatically.
func withDeps(fn func(*Deps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, logCloser, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	defer logCloser.Close()

	client, err := socket.Dial(cfg.Socket.Path, logger)
	if err != nil {
		return fmt.Errorf("connecting to host (is 'threadline hostd' running?): %w", err)
	}
	defer client.Close()

	timelineID := globalTimeline
	if timelineID == "" {
		timelineID = cfg.Timeline.ID
	}

	return fn(&Deps{
		Config:     cfg,
		Client:     client,
		Logger:     logger,
		TimelineID: timelineID,
	})
}
