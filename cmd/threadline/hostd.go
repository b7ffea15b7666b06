package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/threadline-app/threadline/internal/infrastructure/config"
	"github.com/threadline-app/threadline/internal/infrastructure/hostd"
	"github.com/threadline-app/threadline/internal/infrastructure/logging"
)

func newHostdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hostd",
		Short: "Run the development host daemon",
		Long: `Runs a local host process backed by SQLite. Editor commands connect
to it over the configured Unix socket. Intended for development; the desktop
application ships its own host.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}

			cfg, err := config.Load(cwd)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if err := config.EnsureConfigDir(cwd); err != nil {
				return err
			}

			logger, logCloser, err := logging.New(cfg.Log)
			if err != nil {
				return fmt.Errorf("setting up logging: %w", err)
			}
			defer logCloser.Close()

			store, err := hostd.NewStore(cfg.SQLite)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}
			defer store.Close()

			if err := store.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("ensuring schema: %w", err)
			}

			server, err := hostd.NewServer(cfg.Socket.Path, store, logger)
			if err != nil {
				return fmt.Errorf("starting daemon: %w", err)
			}

			fmt.Printf("threadline host daemon listening on %s\n", server.Addr())
			return server.Start(ctx)
		},
	}
}
