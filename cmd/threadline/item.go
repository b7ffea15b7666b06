package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/threadline-app/threadline/internal/application/handlers"
	"github.com/threadline-app/threadline/internal/domain/services"
	"github.com/threadline-app/threadline/internal/infrastructure/pictures"
)

// itemFlags carries the form inputs shared by new and edit.
type itemFlags struct {
	title       string
	description string
	content     string
	story       string
	year        int
	subtick     int
	tags        []string
	pictures    []string
}

func (f *itemFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Item title (required to save)")
	cmd.Flags().StringVar(&f.description, "description", "", "Short description")
	cmd.Flags().StringVar(&f.content, "content", "", "Item body text")
	cmd.Flags().StringVar(&f.story, "story", "", "Free-text story to attach (resolved via search)")
	cmd.Flags().IntVar(&f.year, "year", 0, "Timeline year position")
	cmd.Flags().IntVar(&f.subtick, "subtick", 0, "Position within a year")
	cmd.Flags().StringSliceVar(&f.tags, "tag", nil, "Tags (repeatable)")
	cmd.Flags().StringSliceVar(&f.pictures, "picture", nil, "Picture files to attach (repeatable)")
}

func (f *itemFlags) apply(cmd *cobra.Command, editor *services.ItemEditor) error {
	ctx := cmd.Context()

	if cmd.Flags().Changed("year") || cmd.Flags().Changed("subtick") {
		form := editor.Form()
		year, subtick := form.Year, form.Subtick
		if cmd.Flags().Changed("year") {
			year = f.year
		}
		if cmd.Flags().Changed("subtick") {
			subtick = f.subtick
		}
		editor.SetPosition(year, subtick)
	}
	if cmd.Flags().Changed("title") {
		editor.SetTitle(f.title)
	}
	if cmd.Flags().Changed("description") {
		editor.SetDescription(f.description)
	}
	if cmd.Flags().Changed("content") {
		editor.SetContent(f.content)
	}
	if cmd.Flags().Changed("tag") {
		editor.SetTags(f.tags)
	}
	if cmd.Flags().Changed("story") {
		if err := editor.ResolveStory(ctx, f.story); err != nil {
			return err
		}
	}
	for _, path := range f.pictures {
		pic, err := pictures.Load(path)
		if err != nil {
			return fmt.Errorf("attaching %s: %w", path, err)
		}
		editor.AddPicture(pic)
	}
	return nil
}

func newItemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Edit timeline items",
	}
	cmd.AddCommand(newItemNewCmd(), newItemEditCmd(), newItemListCmd())
	return cmd
}

func newItemListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the timeline's items in position order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDeps(func(d *Deps) error {
				items, err := d.Client.Items(cmd.Context(), d.TimelineID)
				if err != nil {
					return fmt.Errorf("listing items: %w", err)
				}
				if len(items) == 0 {
					fmt.Println("No items on this timeline.")
					return nil
				}
				for _, item := range items {
					fmt.Printf("%s  year %d.%d  %s\n", item.ID, item.Year, item.Subtick, item.Title)
				}
				return nil
			})
		},
	}
}

func newItemNewCmd() *cobra.Command {
	var flags itemFlags

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a timeline item at a position",
		Long: `Opens an item editor session for a new entry at the given year and
subtick. Pictures are read, embedded, and previewed on every change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runItemEditor(cmd, &flags, "")
		},
	}
	flags.register(cmd)
	return cmd
}

func newItemEditCmd() *cobra.Command {
	var flags itemFlags

	cmd := &cobra.Command{
		Use:   "edit <item-id>",
		Short: "Edit an existing timeline item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runItemEditor(cmd, &flags, args[0])
		},
	}
	flags.register(cmd)
	return cmd
}

func runItemEditor(cmd *cobra.Command, flags *itemFlags, itemID string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		window := &commandWindow{}
		renderer := &terminalRenderer{out: os.Stdout}
		editor := services.NewItemEditor(d.Client, renderer, d.TimelineID, d.Logger)
		handler := handlers.NewItemEditorHandler(editor, terminalAlerter{}, window, d.Logger)

		if itemID != "" {
			item, err := d.Client.Item(ctx, itemID)
			if err != nil {
				return fmt.Errorf("loading item: %w", err)
			}
			if item == nil {
				return fmt.Errorf("item not found: %s", itemID)
			}
			editor.SetItem(item)
		}

		if err := flags.apply(cmd, editor); err != nil {
			return err
		}

		saved, err := handler.HandleSave(ctx)
		if err != nil {
			return err
		}
		if !saved {
			fmt.Println("Item not saved.")
			return nil
		}

		form := editor.Form()
		fmt.Printf("Saved item %q at year %d, subtick %d\n", form.Title, form.Year, form.Subtick)
		return nil
	})
}
