package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/threadline-app/threadline/internal/domain/entities"
)

func newStoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "story",
		Short: "Manage stories",
	}
	cmd.AddCommand(newStoryAddCmd(), newStorySearchCmd())
	return cmd
}

func newStoryAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <title>",
		Short: "Add a story to the timeline",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				story, err := d.Client.CreateStory(ctx, entities.Story{
					TimelineID: d.TimelineID,
					Title:      strings.Join(args, " "),
				})
				if err != nil {
					return fmt.Errorf("creating story: %w", err)
				}
				fmt.Printf("Created story: %s (%s)\n", story.Title, story.ID)
				return nil
			})
		},
	}
}

func newStorySearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search stories by title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(func(d *Deps) error {
				stories, err := d.Client.SearchStories(ctx, strings.Join(args, " "), d.TimelineID)
				if err != nil {
					return fmt.Errorf("searching stories: %w", err)
				}
				if len(stories) == 0 {
					fmt.Println("No matching stories.")
					return nil
				}
				for _, st := range stories {
					fmt.Printf("%s  %s\n", st.ID, st.Title)
				}
				return nil
			})
		},
	}
}
