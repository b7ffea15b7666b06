package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/threadline-app/threadline/internal/application/handlers"
	"github.com/threadline-app/threadline/internal/domain/entities"
	"github.com/threadline-app/threadline/internal/domain/ports"
	"github.com/threadline-app/threadline/internal/domain/services"
)

// relationshipFlags carries the form inputs shared by create and edit.
type relationshipFlags struct {
	relType       string
	customType    string
	degree        string
	modifier      string
	strength      int
	bidirectional bool
	notes         string
}

func (f *relationshipFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.relType, "type", "", "Relationship type (e.g. sibling, spouse, friend, rival, custom)")
	cmd.Flags().StringVar(&f.customType, "custom-type", "", "Free-text type used with --type custom/other")
	cmd.Flags().StringVar(&f.degree, "degree", "", "Optional degree qualifier")
	cmd.Flags().StringVar(&f.modifier, "modifier", "", "Optional modifier qualifier (e.g. half, step, former)")
	cmd.Flags().IntVar(&f.strength, "strength", entities.DefaultStrength, "Relationship strength (0-100)")
	cmd.Flags().BoolVar(&f.bidirectional, "bidirectional", false, "Explicitly set the bidirectional flag")
	cmd.Flags().StringVar(&f.notes, "notes", "", "Optional notes")
}

// apply projects the changed flags onto the editor form. The type selection
// goes first so an explicit --bidirectional can still override its default.
func (f *relationshipFlags) apply(cmd *cobra.Command, editor *services.RelationshipEditor) {
	if cmd.Flags().Changed("type") {
		editor.SelectType(entities.RelationType(f.relType))
	}
	if cmd.Flags().Changed("custom-type") {
		editor.SetCustomType(f.customType)
	}
	if cmd.Flags().Changed("degree") {
		editor.SetDegree(f.degree)
	}
	if cmd.Flags().Changed("modifier") {
		editor.SetModifier(f.modifier)
	}
	if cmd.Flags().Changed("strength") {
		editor.SetStrength(f.strength)
	}
	if cmd.Flags().Changed("bidirectional") {
		editor.SetBidirectional(f.bidirectional)
	}
	if cmd.Flags().Changed("notes") {
		editor.SetNotes(f.notes)
	}
}

func newRelationshipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relationship",
		Short: "Edit character relationships",
	}
	cmd.AddCommand(newRelationshipCreateCmd(), newRelationshipEditCmd())
	return cmd
}

func newRelationshipCreateCmd() *cobra.Command {
	var flags relationshipFlags

	cmd := &cobra.Command{
		Use:   "create <character1-id> <character2-id>",
		Short: "Create a relationship between two characters",
		Long: `Opens a relationship editor session for a new record between two
characters. Selecting a symmetric type (sibling, spouse, friend, rival, ...)
defaults the bidirectional flag on; directed types default it off; custom and
other leave it as set. If an identical relationship already exists you are
asked before saving a duplicate.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelationshipEditor(cmd, &flags, ports.RelationshipEditorRequest{
				Character1ID: args[0],
				Character2ID: args[1],
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newRelationshipEditCmd() *cobra.Command {
	var flags relationshipFlags

	cmd := &cobra.Command{
		Use:   "edit <relationship-id>",
		Short: "Edit an existing relationship",
		Long: `Opens a relationship editor session for an existing record. Fields
not set via flags keep their stored values. Duplicate detection does not
apply to edits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelationshipEditor(cmd, &flags, ports.RelationshipEditorRequest{
				RelationshipID: args[0],
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func runRelationshipEditor(cmd *cobra.Command, flags *relationshipFlags, req ports.RelationshipEditorRequest) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		if req.TimelineID == "" {
			req.TimelineID = d.TimelineID
		}

		window := &commandWindow{}
		editor := services.NewRelationshipEditor(d.Client, newTerminalPrompter(), d.Logger)
		handler := handlers.NewRelationshipEditorHandler(editor, d.Client, terminalAlerter{}, window, d.Logger)

		if err := handler.HandleOpen(ctx, req); err != nil {
			return fmt.Errorf("opening relationship editor: %w", err)
		}

		data := editor.Data()
		fmt.Printf("Editing relationship: %s <-> %s\n",
			data.Character1.DisplayName(), data.Character2.DisplayName())

		flags.apply(cmd, editor)

		saved, err := handler.HandleSubmit(ctx)
		if err != nil {
			return err
		}
		if !saved {
			fmt.Println("Relationship not saved.")
			return nil
		}

		form := editor.Form()
		relType := string(form.Type)
		if form.CustomType != "" {
			relType = form.CustomType
		}
		fmt.Printf("Saved: %s -[%s]-> %s\n",
			data.Character1.DisplayName(), relType, data.Character2.DisplayName())
		if form.Bidirectional {
			fmt.Println("  (bidirectional)")
		}
		return nil
	})
}
