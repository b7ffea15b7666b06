package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/threadline-app/threadline/internal/domain/entities"
	"github.com/threadline-app/threadline/internal/domain/ports"
)

// EditorState names the phases of an editor's submit cycle.
type EditorState string

const (
	StateIdle           EditorState = "idle"
	StateValidating     EditorState = "validating"
	StateDuplicateCheck EditorState = "duplicate_check"
	StateSubmitting     EditorState = "submitting"
	StateClosed         EditorState = "closed"
)

// Session-level failures.
var (
	// ErrNoEditorData means the host delivered nothing on open. The editor
	// is left non-functional.
	ErrNoEditorData = errors.New("no editor data received from host")

	// ErrSubmitInFlight means a submit was attempted while a previous call
	// to the host had not resolved yet.
	ErrSubmitInFlight = errors.New("a submit is already in flight")

	// ErrEditorClosed means the session already completed.
	ErrEditorClosed = errors.New("editor session is closed")
)

// RelationshipForm holds the editable fields of the relationship editor as
// typed values. The rendering surface projects from and into this struct;
// field values are never read back from the surface as a source of truth.
type RelationshipForm struct {
	Type          entities.RelationType
	CustomType    string
	Degree        string
	Modifier      string
	Strength      int
	Bidirectional bool
	Notes         string
}

// RelationshipEditor is one relationship editor session. It owns the session
// context delivered by the host, the form state, and the snapshot of
// existing relationships used for duplicate detection.
//
// It is single-threaded by design: all calls come from the one event loop
// driving the editor surface.
type RelationshipEditor struct {
	host       ports.Host
	prompter   ports.Prompter
	classifier Classifier
	logger     *slog.Logger

	state    EditorState
	data     *ports.RelationshipEditorData
	existing []entities.Relationship
	form     RelationshipForm
}

// NewRelationshipEditor creates an unopened relationship editor session.
func NewRelationshipEditor(host ports.Host, prompter ports.Prompter, logger *slog.Logger) *RelationshipEditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &RelationshipEditor{
		host:     host,
		prompter: prompter,
		logger:   logger,
		state:    StateIdle,
	}
}

// Open loads the session payload from the host and, for new records, the
// snapshot of existing relationships between the two characters. The
// snapshot is loaded once per session; edits skip it entirely because
// duplicate detection never applies to them.
func (e *RelationshipEditor) Open(ctx context.Context, req ports.RelationshipEditorRequest) error {
	data, err := e.host.RelationshipEditorData(ctx, req)
	if err != nil {
		e.logger.Error("loading relationship editor data", "error", err)
		return fmt.Errorf("loading relationship editor data: %w", err)
	}
	if data == nil {
		e.logger.Error("relationship editor opened without data")
		return ErrNoEditorData
	}
	e.data = data

	if data.IsEdit && data.Relationship != nil {
		e.form = formFromRecord(data.Relationship)
	} else {
		e.form = RelationshipForm{Strength: entities.DefaultStrength}
	}

	if !data.IsEdit {
		existing, err := e.host.RelationshipsBetween(ctx,
			data.Character1.ID, data.Character2.ID, data.TimelineID)
		if err != nil {
			return fmt.Errorf("loading existing relationships: %w", err)
		}
		e.existing = existing
	}

	e.state = StateIdle
	return nil
}

// State returns the current phase of the submit cycle.
func (e *RelationshipEditor) State() EditorState {
	return e.state
}

// SubmitEnabled reports whether the submit control should be active. It is
// disabled for the whole duration of a host call so no duplicate submission
// can be in flight.
func (e *RelationshipEditor) SubmitEnabled() bool {
	return e.state == StateIdle
}

// Data returns the session payload, or nil before a successful Open.
func (e *RelationshipEditor) Data() *ports.RelationshipEditorData {
	return e.data
}

// Form returns a copy of the current form state for projection onto the
// rendering surface.
func (e *RelationshipEditor) Form() RelationshipForm {
	return e.form
}

// SelectType records a type choice and applies the directionality default to
// the bidirectional flag.
func (e *RelationshipEditor) SelectType(t entities.RelationType) {
	e.form.Type = t
	e.form.Bidirectional = e.classifier.ApplyDirectionality(t, e.form.Bidirectional)
	if !entities.IsCustomType(t) {
		e.form.CustomType = ""
	}
}

// SetCustomType records the free-text type used with custom/other.
func (e *RelationshipEditor) SetCustomType(s string) { e.form.CustomType = s }

// SetDegree records the optional degree qualifier.
func (e *RelationshipEditor) SetDegree(s string) { e.form.Degree = s }

// SetModifier records the optional modifier qualifier.
func (e *RelationshipEditor) SetModifier(s string) { e.form.Modifier = s }

// SetStrength records the strength value, clamped to its domain.
func (e *RelationshipEditor) SetStrength(s int) { e.form.Strength = entities.ClampStrength(s) }

// SetBidirectional records an explicit user choice for the flag.
func (e *RelationshipEditor) SetBidirectional(b bool) { e.form.Bidirectional = b }

// SetNotes records the optional notes text.
func (e *RelationshipEditor) SetNotes(s string) { e.form.Notes = s }

// Candidate builds the relationship record the current form state describes.
func (e *RelationshipEditor) Candidate() *entities.Relationship {
	rel := &entities.Relationship{
		Character1ID:  e.data.Character1.ID,
		Character2ID:  e.data.Character2.ID,
		Type:          e.form.Type,
		Degree:        e.form.Degree,
		Modifier:      e.form.Modifier,
		Strength:      entities.ClampStrength(e.form.Strength),
		Bidirectional: e.form.Bidirectional,
		Notes:         e.form.Notes,
		TimelineID:    e.data.TimelineID,
	}
	if entities.IsCustomType(e.form.Type) {
		rel.CustomType = e.form.CustomType
	}
	if e.data.IsEdit && e.data.Relationship != nil {
		rel.ID = e.data.Relationship.ID
		rel.Character1ID = e.data.Relationship.Character1ID
		rel.Character2ID = e.data.Relationship.Character2ID
	}
	return rel
}

// Submit runs the full save cycle: validation, duplicate check (creation
// only), and the host call. It returns saved=false with a nil error when the
// user declines a duplicate conflict; that abort has no side effect.
//
// Validation and transport failures return the editor to idle so the form
// stays editable.
func (e *RelationshipEditor) Submit(ctx context.Context) (saved bool, err error) {
	switch e.state {
	case StateClosed:
		return false, ErrEditorClosed
	case StateIdle:
	default:
		return false, ErrSubmitInFlight
	}
	if e.data == nil {
		return false, ErrNoEditorData
	}

	e.state = StateValidating
	candidate := e.Candidate()
	if err := e.classifier.ValidateCandidate(candidate); err != nil {
		e.state = StateIdle
		return false, err
	}

	if !e.data.IsEdit {
		e.state = StateDuplicateCheck
		if duplicates := e.classifier.FindDuplicates(candidate, e.existing); len(duplicates) > 0 {
			proceed, err := e.prompter.ConfirmDuplicate(ctx, duplicates)
			if err != nil {
				e.state = StateIdle
				return false, fmt.Errorf("confirming duplicate: %w", err)
			}
			if !proceed {
				e.logger.Info("duplicate conflict declined, save aborted",
					"type", candidate.Type,
					"character1", candidate.Character1ID,
					"character2", candidate.Character2ID)
				e.state = StateIdle
				return false, nil
			}
		}
	}

	e.state = StateSubmitting
	if e.data.IsEdit {
		err = e.host.UpdateRelationship(ctx, candidate.ID, candidate)
	} else {
		err = e.host.CreateRelationship(ctx, candidate)
	}
	if err != nil {
		e.state = StateIdle
		return false, fmt.Errorf("saving relationship: %w", err)
	}

	e.state = StateClosed
	return true, nil
}

// formFromRecord projects a persisted record into form state. Together with
// Candidate it round-trips field values exactly.
func formFromRecord(rel *entities.Relationship) RelationshipForm {
	return RelationshipForm{
		Type:          rel.Type,
		CustomType:    rel.CustomType,
		Degree:        rel.Degree,
		Modifier:      rel.Modifier,
		Strength:      entities.ClampStrength(rel.Strength),
		Bidirectional: rel.Bidirectional,
		Notes:         rel.Notes,
	}
}
