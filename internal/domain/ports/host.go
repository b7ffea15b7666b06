package ports

import (
	"context"

	"github.com/threadline-app/threadline/internal/domain/entities"
)

// RelationshipEditorRequest scopes a relationship editor session: either a
// character pair for a new record, or an existing relationship ID for edits.
type RelationshipEditorRequest struct {
	Character1ID   string `json:"character1Id,omitempty"`
	Character2ID   string `json:"character2Id,omitempty"`
	RelationshipID string `json:"relationshipId,omitempty"`
	TimelineID     string `json:"timelineId,omitempty"`
}

// RelationshipEditorData is the payload delivered when a relationship editor
// session opens.
type RelationshipEditorData struct {
	Character1   entities.Character     `json:"character1"`
	Character2   entities.Character     `json:"character2"`
	IsEdit       bool                   `json:"isEdit"`
	Relationship *entities.Relationship `json:"relationship,omitempty"`
	TimelineID   string                 `json:"timelineId"`
}

// Host is the invoke-style interface to the process that owns persisted
// state. Every call suspends until the host answers; the editors never
// retry or time out at this layer.
type Host interface {
	// RelationshipEditorData fetches the session payload for a relationship
	// editor. A nil payload with no error means the host had nothing for
	// this session (initialization failure).
	RelationshipEditorData(ctx context.Context, req RelationshipEditorRequest) (*RelationshipEditorData, error)

	// RelationshipsBetween returns all persisted relationships between two
	// characters, in either direction, scoped to a timeline.
	RelationshipsBetween(ctx context.Context, character1ID, character2ID, timelineID string) ([]entities.Relationship, error)

	// CreateRelationship persists a new relationship record.
	CreateRelationship(ctx context.Context, rel *entities.Relationship) error

	// UpdateRelationship replaces the record with the given ID.
	UpdateRelationship(ctx context.Context, id string, rel *entities.Relationship) error

	// RefreshCharacterManager asks the host to refresh the character
	// manager view after a save or an external character change.
	RefreshCharacterManager(ctx context.Context) error

	// SearchStories resolves free-text input to matching stories.
	SearchStories(ctx context.Context, query, timelineID string) ([]entities.Story, error)

	// Item fetches a timeline item by ID.
	Item(ctx context.Context, id string) (*entities.Item, error)

	// CreateItem persists a new timeline item.
	CreateItem(ctx context.Context, item *entities.Item) error

	// UpdateItem replaces the item with the given ID.
	UpdateItem(ctx context.Context, id string, item *entities.Item) error
}
