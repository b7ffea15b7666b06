package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadline-app/threadline/internal/domain/entities"
	"github.com/threadline-app/threadline/internal/domain/mocks"
	"github.com/threadline-app/threadline/internal/domain/ports"
	"github.com/threadline-app/threadline/internal/domain/services"
)

type itemHandlerFixture struct {
	host    *mocks.Host
	alerter *mocks.Alerter
	window  *mocks.Window
	handler *ItemEditorHandler
}

func setupItemHandler(t *testing.T) *itemHandlerFixture {
	t.Helper()

	host := mocks.NewHost()
	alerter := &mocks.Alerter{}
	window := &mocks.Window{}

	editor := services.NewItemEditor(host, nil, "tl-1", nil)
	handler := NewItemEditorHandler(editor, alerter, window, nil)

	return &itemHandlerFixture{
		host:    host,
		alerter: alerter,
		window:  window,
		handler: handler,
	}
}

func TestItemEditorHandler_HandleSave(t *testing.T) {
	ctx := context.Background()

	t.Run("success closes the window", func(t *testing.T) {
		f := setupItemHandler(t)
		f.handler.Editor().SetTitle("The Siege")

		saved, err := f.handler.HandleSave(ctx)
		require.NoError(t, err)
		assert.True(t, saved)
		assert.Equal(t, 1, f.window.Closed)
		assert.Empty(t, f.alerter.Messages)
		require.Len(t, f.host.CreatedItems, 1)
		assert.Equal(t, "The Siege", f.host.CreatedItems[0].Title)
	})

	t.Run("missing title becomes an alert, window stays open", func(t *testing.T) {
		f := setupItemHandler(t)

		saved, err := f.handler.HandleSave(ctx)
		require.NoError(t, err)
		assert.False(t, saved)
		require.Len(t, f.alerter.Messages, 1)
		assert.Contains(t, f.alerter.Messages[0], "item title is required")
		assert.Zero(t, f.window.Closed)
		assert.True(t, f.handler.Editor().SubmitEnabled())
	})

	t.Run("transport failure becomes an alert, form re-enabled", func(t *testing.T) {
		f := setupItemHandler(t)
		f.host.CreateItemErr = errors.New("socket reset")
		f.handler.Editor().SetTitle("The Siege")

		saved, err := f.handler.HandleSave(ctx)
		require.NoError(t, err)
		assert.False(t, saved)
		require.Len(t, f.alerter.Messages, 1)
		assert.Contains(t, f.alerter.Messages[0], "socket reset")
		assert.Zero(t, f.window.Closed)
		assert.True(t, f.handler.Editor().SubmitEnabled())
	})

	t.Run("save after cancel is an error", func(t *testing.T) {
		f := setupItemHandler(t)
		f.handler.Editor().SetTitle("The Siege")
		f.handler.HandleCancel()

		_, err := f.handler.HandleSave(ctx)
		assert.ErrorIs(t, err, services.ErrEditorClosed)
	})
}

func TestItemEditorHandler_HandleCancel(t *testing.T) {
	f := setupItemHandler(t)
	f.handler.Editor().SetTitle("unsaved edits")

	f.handler.HandleCancel()

	// Closes immediately, no confirmation, nothing sent to the host.
	assert.Equal(t, 1, f.window.Closed)
	assert.Empty(t, f.host.CreatedItems)
	assert.Empty(t, f.alerter.Messages)
}

func TestItemEditorHandler_HandleNotification(t *testing.T) {
	ctx := context.Background()
	f := setupItemHandler(t)
	f.handler.Editor().SetTitle("The Siege")

	f.handler.HandleNotification(ctx, ports.Notification{
		Type: ports.NoteStorySearchResults,
		Stories: []entities.Story{
			{ID: "story-1", Title: "First Age"},
			{ID: "story-2", Title: "Second Age"},
		},
	})

	form := f.handler.Editor().Form()
	assert.Equal(t, "story-1", form.StoryID, "first result wins")
	assert.Equal(t, "First Age", form.StoryTitle)

	// Character notifications are not this editor's concern.
	f.handler.HandleNotification(ctx, ports.Notification{Type: ports.NoteCharacterCreated})
	assert.Equal(t, "story-1", f.handler.Editor().Form().StoryID)
}

func TestItemEditorHandler_Listen(t *testing.T) {
	f := setupItemHandler(t)

	notifier := &chanNotifier{ch: make(chan ports.Notification, 1)}
	notifier.ch <- ports.Notification{
		Type:    ports.NoteStorySearchResults,
		Stories: []entities.Story{{ID: "story-9", Title: "Interregnum"}},
	}
	close(notifier.ch)

	f.handler.Listen(context.Background(), notifier)

	assert.Equal(t, "story-9", f.handler.Editor().Form().StoryID)
}
