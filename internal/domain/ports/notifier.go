package ports

import "github.com/threadline-app/threadline/internal/domain/entities"

// NotificationType names a fire-and-forget push from the host.
type NotificationType string

const (
	NoteCharacterCreated   NotificationType = "character-created"
	NoteCharacterUpdated   NotificationType = "character-updated"
	NoteStorySearchResults NotificationType = "story-search-results"
)

// Notification is a pushed event. Only story search results carry a payload.
type Notification struct {
	Type    NotificationType `json:"type"`
	Stories []entities.Story `json:"stories,omitempty"`
}

// Notifier exposes host pushes as a channel. The channel is closed when the
// underlying connection goes away; the editors treat that as end of session.
type Notifier interface {
	Notifications() <-chan Notification
}
