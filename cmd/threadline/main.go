// Package main provides the entry point for the threadline editor CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version        = "0.1.0-dev"
	globalTimeline string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:     "threadline",
		Short:   "Editors for the threadline timeline and character relationship data",
		Version: version,
	}

	rootCmd.PersistentFlags().StringVarP(&globalTimeline, "timeline", "t", "", "Timeline to operate on (defaults to config)")

	rootCmd.AddCommand(
		newRelationshipCmd(),
		newItemCmd(),
		newCharacterCmd(),
		newStoryCmd(),
		newHostdCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
