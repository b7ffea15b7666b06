package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/threadline-app/threadline/internal/domain/entities"
)

func newCharacterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "character",
		Short: "Manage characters",
	}
	cmd.AddCommand(newCharacterAddCmd(), newCharacterRenameCmd())
	return cmd
}

func newCharacterAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a character to the timeline",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				ch, err := d.Client.CreateCharacter(ctx, entities.Character{
					TimelineID: d.TimelineID,
					Name:       strings.Join(args, " "),
				})
				if err != nil {
					return fmt.Errorf("creating character: %w", err)
				}
				fmt.Printf("Created character: %s (%s)\n", ch.Name, ch.ID)
				return nil
			})
		},
	}
}

func newCharacterRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <character-id> <name>",
		Short: "Rename a character",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				ch, err := d.Client.UpdateCharacter(ctx, entities.Character{
					ID:         args[0],
					TimelineID: d.TimelineID,
					Name:       strings.Join(args[1:], " "),
				})
				if err != nil {
					return fmt.Errorf("renaming character: %w", err)
				}
				fmt.Printf("Renamed character: %s (%s)\n", ch.Name, ch.ID)
				return nil
			})
		},
	}
}
