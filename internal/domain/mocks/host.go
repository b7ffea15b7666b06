// Package mocks provides hand-written test doubles for the domain ports.
package mocks

import (
	"context"

	"github.com/threadline-app/threadline/internal/domain/entities"
	"github.com/threadline-app/threadline/internal/domain/ports"
)

// Host is a mock implementation of ports.Host. Zero value is usable; set
// the Err fields to force failures and the data fields to can responses.
type Host struct {
	EditorData    *ports.RelationshipEditorData
	EditorDataErr error

	Existing    []entities.Relationship
	ExistingErr error

	Created   []*entities.Relationship
	CreateErr error

	Updated   map[string]*entities.Relationship
	UpdateErr error

	Refreshed  int
	RefreshErr error

	Stories    []entities.Story
	SearchErr  error
	LastSearch string

	Items         map[string]*entities.Item
	ItemErr       error
	CreatedItems  []*entities.Item
	CreateItemErr error
	UpdatedItems  map[string]*entities.Item
	UpdateItemErr error
}

var _ ports.Host = (*Host)(nil)

// NewHost creates a mock Host with empty maps initialized.
func NewHost() *Host {
	return &Host{
		Updated:      make(map[string]*entities.Relationship),
		Items:        make(map[string]*entities.Item),
		UpdatedItems: make(map[string]*entities.Item),
	}
}

// RelationshipEditorData returns the canned session payload.
func (m *Host) RelationshipEditorData(_ context.Context, _ ports.RelationshipEditorRequest) (*ports.RelationshipEditorData, error) {
	if m.EditorDataErr != nil {
		return nil, m.EditorDataErr
	}
	return m.EditorData, nil
}

// RelationshipsBetween returns the canned existing-relationship snapshot.
func (m *Host) RelationshipsBetween(_ context.Context, _, _, _ string) ([]entities.Relationship, error) {
	if m.ExistingErr != nil {
		return nil, m.ExistingErr
	}
	return m.Existing, nil
}

// CreateRelationship records the created relationship.
func (m *Host) CreateRelationship(_ context.Context, rel *entities.Relationship) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.Created = append(m.Created, rel)
	return nil
}

// UpdateRelationship records the updated relationship by ID.
func (m *Host) UpdateRelationship(_ context.Context, id string, rel *entities.Relationship) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	if m.Updated == nil {
		m.Updated = make(map[string]*entities.Relationship)
	}
	m.Updated[id] = rel
	return nil
}

// RefreshCharacterManager counts refresh requests.
func (m *Host) RefreshCharacterManager(_ context.Context) error {
	if m.RefreshErr != nil {
		return m.RefreshErr
	}
	m.Refreshed++
	return nil
}

// SearchStories returns the canned story list and records the query.
func (m *Host) SearchStories(_ context.Context, query, _ string) ([]entities.Story, error) {
	m.LastSearch = query
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	return m.Stories, nil
}

// Item returns the canned item by ID.
func (m *Host) Item(_ context.Context, id string) (*entities.Item, error) {
	if m.ItemErr != nil {
		return nil, m.ItemErr
	}
	return m.Items[id], nil
}

// CreateItem records the created item.
func (m *Host) CreateItem(_ context.Context, item *entities.Item) error {
	if m.CreateItemErr != nil {
		return m.CreateItemErr
	}
	m.CreatedItems = append(m.CreatedItems, item)
	return nil
}

// UpdateItem records the updated item by ID.
func (m *Host) UpdateItem(_ context.Context, id string, item *entities.Item) error {
	if m.UpdateItemErr != nil {
		return m.UpdateItemErr
	}
	if m.UpdatedItems == nil {
		m.UpdatedItems = make(map[string]*entities.Item)
	}
	m.UpdatedItems[id] = item
	return nil
}
