package entities

import (
	"strings"
	"time"
)

// Character represents a person on a timeline.
type Character struct {
	ID         string    `json:"id"`
	TimelineID string    `json:"timeline_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// DisplayName returns the character's name, trimmed, or the ID when the name
// is empty.
func (c Character) DisplayName() string {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return c.ID
	}
	return name
}
