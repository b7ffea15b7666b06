package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/threadline-app/threadline/internal/domain/ports"
	"github.com/threadline-app/threadline/internal/domain/services"
)

// ItemEditorHandler drives one item editor session.
type ItemEditorHandler struct {
	editor  *services.ItemEditor
	alerter ports.Alerter
	window  ports.Window
	logger  *slog.Logger
}

// NewItemEditorHandler creates a handler around an item editor session.
func NewItemEditorHandler(
	editor *services.ItemEditor,
	alerter ports.Alerter,
	window ports.Window,
	logger *slog.Logger,
) *ItemEditorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ItemEditorHandler{
		editor:  editor,
		alerter: alerter,
		window:  window,
		logger:  logger,
	}
}

// Editor exposes the underlying session for form input.
func (h *ItemEditorHandler) Editor() *services.ItemEditor {
	return h.editor
}

// HandleSave validates and forwards the collected record. Validation and
// transport failures become alerts with the form re-enabled; success closes
// the window.
func (h *ItemEditorHandler) HandleSave(ctx context.Context) (bool, error) {
	if err := h.editor.Save(ctx); err != nil {
		if errors.Is(err, services.ErrSubmitInFlight) || errors.Is(err, services.ErrEditorClosed) {
			return false, err
		}
		if !errors.Is(err, services.ErrMissingTitle) {
			h.logger.Error("item save failed", "error", err)
		}
		h.alerter.Alert(err.Error())
		return false, nil
	}
	h.window.Close()
	return true, nil
}

// HandleCancel ends the session and closes the window with no side effect.
// No confirmation about unsaved edits is asked; that is current product
// behavior.
func (h *ItemEditorHandler) HandleCancel() {
	h.editor.Cancel()
	h.window.Close()
}

// HandleNotification applies pushed story search results to the form.
func (h *ItemEditorHandler) HandleNotification(_ context.Context, n ports.Notification) {
	if n.Type == ports.NoteStorySearchResults {
		h.editor.ApplyStoryResults(n.Stories)
	}
}

// Listen consumes notifications until the channel closes or ctx is done.
func (h *ItemEditorHandler) Listen(ctx context.Context, notifier ports.Notifier) {
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
