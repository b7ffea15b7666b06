// Package handlers wires editor sessions to their collaborators: the host,
// the prompt/alert surfaces, and the hosting window. Handlers own the error
// taxonomy; services stay free of presentation concerns.
package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/threadline-app/threadline/internal/domain/ports"
	"github.com/threadline-app/threadline/internal/domain/services"
)

// RelationshipEditorHandler drives one relationship editor session.
type RelationshipEditorHandler struct {
	editor  *services.RelationshipEditor
	host    ports.Host
	alerter ports.Alerter
	window  ports.Window
	logger  *slog.Logger
}

// NewRelationshipEditorHandler creates a handler around an editor session.
func NewRelationshipEditorHandler(
	editor *services.RelationshipEditor,
	host ports.Host,
	alerter ports.Alerter,
	window ports.Window,
	logger *slog.Logger,
) *RelationshipEditorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RelationshipEditorHandler{
		editor:  editor,
		host:    host,
		alerter: alerter,
		window:  window,
		logger:  logger,
	}
}

// Editor exposes the underlying session for form input.
func (h *RelationshipEditorHandler) Editor() *services.RelationshipEditor {
	return h.editor
}

// HandleOpen loads the session payload. An initialization failure is logged
// and returned; the editor is left non-functional with no user-facing
// recovery path.
func (h *RelationshipEditorHandler) HandleOpen(ctx context.Context, req ports.RelationshipEditorRequest) error {
	return h.editor.Open(ctx, req)
}

// HandleSubmit runs the save cycle and maps failures onto the UI:
// validation failures and transport failures become blocking alerts with the
// form re-enabled; a declined duplicate conflict is a silent abort. On
// success the character manager is refreshed and the window closes.
func (h *RelationshipEditorHandler) HandleSubmit(ctx context.Context) (bool, error) {
	saved, err := h.editor.Submit(ctx)
	if err != nil {
		if isValidationError(err) {
			h.alerter.Alert(err.Error())
			return false, nil
		}
		if errors.Is(err, services.ErrSubmitInFlight) || errors.Is(err, services.ErrEditorClosed) {
			return false, err
		}
		h.logger.Error("relationship save failed", "error", err)
		h.alerter.Alert(err.Error())
		return false, nil
	}
	if !saved {
		return false, nil
	}

	if err := h.host.RefreshCharacterManager(ctx); err != nil {
		h.logger.Warn("refreshing character manager", "error", err)
	}
	h.window.Close()
	return true, nil
}

// HandleCancel closes the window with no side effect, regardless of unsaved
// edits.
func (h *RelationshipEditorHandler) HandleCancel() {
	h.window.Close()
}

// HandleNotification reacts to host pushes. Character changes trigger a
// character manager refresh, not a local state merge.
func (h *RelationshipEditorHandler) HandleNotification(ctx context.Context, n ports.Notification) {
	switch n.Type {
	case ports.NoteCharacterCreated, ports.NoteCharacterUpdated:
		if err := h.host.RefreshCharacterManager(ctx); err != nil {
			h.logger.Warn("refreshing character manager", "error", err)
		}
	}
}

// Listen consumes notifications until the channel closes or ctx is done.
func (h *RelationshipEditorHandler) Listen(ctx context.Context, notifier ports.Notifier) {
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-notifier.Notifications():
			if !ok {
				return
			}
			h.HandleNotification(ctx, n)
		}
	}
}

// isValidationError reports whether err belongs to the recoverable
// validation taxonomy.
func isValidationError(err error) bool {
	return errors.Is(err, services.ErrMissingType) ||
		errors.Is(err, services.ErrMissingCustomType) ||
		errors.Is(err, services.ErrCustomTypeLength)
}
