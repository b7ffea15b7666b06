package entities

import "time"

// Item represents a single timeline entry: an event, note, or scene anchored
// at a (year, subtick) position.
type Item struct {
	ID         string `json:"id,omitempty"`
	TimelineID string `json:"timeline_id"`

	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content,omitempty"`

	// StoryID links the item to a story resolved from free-text search.
	// Empty means the item is not attached to a story.
	StoryID    string `json:"story_id,omitempty"`
	StoryTitle string `json:"story_title,omitempty"`

	Year    int `json:"year"`
	Subtick int `json:"subtick"`

	Tags     []string  `json:"tags,omitempty"`
	Pictures []Picture `json:"pictures,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Picture is an embeddable image attachment on an item. Data carries the
// file contents base64-encoded so the record can cross the host boundary
// without a shared filesystem.
type Picture struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
	Size      int    `json:"size"`
}
