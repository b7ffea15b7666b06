// Package wire defines the message framing shared by the host socket client
// and the host daemon: newline-delimited JSON, invoke-style requests matched
// to responses by ID, plus fire-and-forget notifications.
package wire

import (
	"encoding/json"

	"github.com/threadline-app/threadline/internal/domain/entities"
)

// Named operations on the host boundary.
const (
	OpRelationshipEditorData  = "get-relationship-editor-data"
	OpRelationshipsBetween    = "get-character-relationships-between"
	OpCreateRelationship      = "create-character-relationship"
	OpUpdateRelationship      = "update-character-relationship"
	OpRefreshCharacterManager = "refresh-character-manager"
	OpStorySearch             = "story-search"
	OpGetItem                 = "get-item"
	OpListItems               = "list-items"
	OpCreateItem              = "create-item"
	OpUpdateItem              = "update-item"
	OpCreateCharacter         = "create-character"
	OpUpdateCharacter         = "update-character"
	OpCreateStory             = "create-story"
)

// Message kinds.
const (
	KindRequest  = "request"
	KindResponse = "response"
	KindNotify   = "notify"
)

// Message is one frame on the socket.
type Message struct {
	Kind string `json:"kind"`

	// Request/response fields. ID correlates a response to its request.
	ID      string          `json:"id,omitempty"`
	Op      string          `json:"op,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Success bool            `json:"success,omitempty"`
	Error   string          `json:"error,omitempty"`

	// Notification field.
	Note string `json:"note,omitempty"`
}

// BetweenRequest asks for all relationships between two characters.
type BetweenRequest struct {
	Character1ID string `json:"character1Id"`
	Character2ID string `json:"character2Id"`
	TimelineID   string `json:"timelineId"`
}

// BetweenResponse carries the relationship list.
type BetweenResponse struct {
	Relationships []entities.Relationship `json:"relationships"`
}

// UpdateRelationshipRequest replaces the record with the given ID.
type UpdateRelationshipRequest struct {
	ID           string                 `json:"id"`
	Relationship *entities.Relationship `json:"relationship"`
}

// StorySearchRequest resolves free-text input to stories.
type StorySearchRequest struct {
	Query      string `json:"query"`
	TimelineID string `json:"timelineId"`
}

// StorySearchResponse carries the matching stories. The same shape is pushed
// as the story-search-results notification payload.
type StorySearchResponse struct {
	Stories []entities.Story `json:"stories"`
}

// ItemRequest fetches an item by ID.
type ItemRequest struct {
	ID string `json:"id"`
}

// ItemResponse carries a single item, absent when not found.
type ItemResponse struct {
	Item *entities.Item `json:"item,omitempty"`
}

// ItemListRequest fetches all items on a timeline.
type ItemListRequest struct {
	TimelineID string `json:"timelineId"`
}

// ItemListResponse carries the timeline's items in position order.
type ItemListResponse struct {
	Items []entities.Item `json:"items"`
}

// UpdateItemRequest replaces the item with the given ID.
type UpdateItemRequest struct {
	ID   string         `json:"id"`
	Item *entities.Item `json:"item"`
}

// CharacterRequest creates or updates a character.
type CharacterRequest struct {
	Character entities.Character `json:"character"`
}

// CharacterResponse carries the persisted character.
type CharacterResponse struct {
	Character entities.Character `json:"character"`
}

// StoryRequest creates a story.
type StoryRequest struct {
	Story entities.Story `json:"story"`
}

// StoryResponse carries the persisted story.
type StoryResponse struct {
	Story entities.Story `json:"story"`
}
