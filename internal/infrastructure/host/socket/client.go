// Package socket implements the Host port over a Unix domain socket using
// the wire message framing.
package socket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/threadline-app/threadline/internal/domain/entities"
	"github.com/threadline-app/threadline/internal/domain/ports"
	"github.com/threadline-app/threadline/internal/infrastructure/host/wire"
)

// ErrClosed is returned for calls made after the connection went away.
var ErrClosed = errors.New("host connection closed")

// notificationBuffer bounds pending pushes; the editors consume them on
// their single event loop, so a small buffer suffices.
const notificationBuffer = 16

// Client talks to the host process over one socket connection. It
// implements ports.Host for invoke-style calls and ports.Notifier for
// pushed notifications.
type Client struct {
	conn   net.Conn
	logger *slog.Logger

	encMu sync.Mutex
	enc   *json.Encoder

	mu      sync.Mutex
	pending map[string]chan wire.Message
	closed  bool

	notes chan ports.Notification

	closeOnce sync.Once
}

var (
	_ ports.Host     = (*Client)(nil)
	_ ports.Notifier = (*Client)(nil)
)

// Dial connects to the host socket and starts the read loop.
func Dial(socketPath string, logger *slog.Logger) (*Client, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("dialing host socket: %w", err)
	}
	return NewClient(conn, logger), nil
}

// NewClient wraps an established connection. Exported so tests can run the
// client over an in-memory pipe.
func NewClient(conn net.Conn, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		conn:    conn,
		logger:  logger,
		enc:     json.NewEncoder(conn),
		pending: make(map[string]chan wire.Message),
		notes:   make(chan ports.Notification, notificationBuffer),
	}
	go c.readLoop()
	return c
}

// Close tears down the connection. Pending invokes fail with ErrClosed.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}

// Notifications returns the pushed notification channel. It is closed when
// the connection goes away.
func (c *Client) Notifications() <-chan ports.Notification {
	return c.notes
}

func (c *Client) readLoop() {
	dec := json.NewDecoder(c.conn)
	for {
		var msg wire.Message
		if err := dec.Decode(&msg); err != nil {
			c.shutdown()
			return
		}
		switch msg.Kind {
		case wire.KindResponse:
			c.deliver(msg)
		case wire.KindNotify:
			c.notify(msg)
		default:
			c.logger.Warn("unexpected message kind from host", "kind", msg.Kind)
		}
	}
}

func (c *Client) deliver(msg wire.Message) {
	c.mu.Lock()
	ch, ok := c.pending[msg.ID]
	delete(c.pending, msg.ID)
	c.mu.Unlock()
	if !ok {
		c.logger.Warn("response for unknown request", "id", msg.ID, "op", msg.Op)
		return
	}
	ch <- msg
}

func (c *Client) notify(msg wire.Message) {
	n := ports.Notification{Type: ports.NotificationType(msg.Note)}
	if len(msg.Payload) > 0 {
		var payload wire.StorySearchResponse
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.logger.Warn("decoding notification payload", "note", msg.Note, "error", err)
		} else {
			n.Stories = payload.Stories
		}
	}
	select {
	case c.notes <- n:
	default:
		c.logger.Warn("notification dropped, consumer too slow", "note", msg.Note)
	}
}

// shutdown fails every pending invoke and closes the notification channel.
func (c *Client) shutdown() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	for id, ch := range pending {
		ch <- wire.Message{Kind: wire.KindResponse, ID: id, Error: ErrClosed.Error()}
	}
	close(c.notes)
}

// invoke sends one request and waits for its response or ctx cancellation.
// It returns the raw response payload; a host-reported failure comes back as
// an error carrying the host's message.
func (c *Client) invoke(ctx context.Context, op string, payload any) (json.RawMessage, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding %s payload: %w", op, err)
		}
		raw = data
	}

	id := uuid.New().String()
	ch := make(chan wire.Message, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.pending[id] = ch
	c.mu.Unlock()

	c.encMu.Lock()
	err := c.enc.Encode(wire.Message{
		Kind:    wire.KindRequest,
		ID:      id,
		Op:      op,
		Payload: raw,
	})
	c.encMu.Unlock()
	if err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, fmt.Errorf("sending %s request: %w", op, err)
	}

	select {
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, ctx.Err()
	case resp := <-ch:
		if resp.Error != "" || !resp.Success {
			msg := resp.Error
			if msg == "" {
				msg = "host reported failure"
			}
			return nil, errors.New(msg)
		}
		return resp.Payload, nil
	}
}

// invokeInto runs invoke and decodes the response payload into out. An empty
// payload leaves out untouched and reports false.
func (c *Client) invokeInto(ctx context.Context, op string, payload, out any) (bool, error) {
	raw, err := c.invoke(ctx, op, payload)
	if err != nil {
		return false, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decoding %s response: %w", op, err)
	}
	return true, nil
}

// RelationshipEditorData fetches the relationship editor session payload.
func (c *Client) RelationshipEditorData(ctx context.Context, req ports.RelationshipEditorRequest) (*ports.RelationshipEditorData, error) {
	var data ports.RelationshipEditorData
	ok, err := c.invokeInto(ctx, wire.OpRelationshipEditorData, req, &data)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &data, nil
}

// RelationshipsBetween returns all relationships between two characters.
func (c *Client) RelationshipsBetween(ctx context.Context, character1ID, character2ID, timelineID string) ([]entities.Relationship, error) {
	req := wire.BetweenRequest{
		Character1ID: character1ID,
		Character2ID: character2ID,
		TimelineID:   timelineID,
	}
	var resp wire.BetweenResponse
	if _, err := c.invokeInto(ctx, wire.OpRelationshipsBetween, req, &resp); err != nil {
		return nil, err
	}
	return resp.Relationships, nil
}

// CreateRelationship persists a new relationship record.
func (c *Client) CreateRelationship(ctx context.Context, rel *entities.Relationship) error {
	_, err := c.invoke(ctx, wire.OpCreateRelationship, rel)
	return err
}

// UpdateRelationship replaces the record with the given ID.
func (c *Client) UpdateRelationship(ctx context.Context, id string, rel *entities.Relationship) error {
	_, err := c.invoke(ctx, wire.OpUpdateRelationship, wire.UpdateRelationshipRequest{
		ID:           id,
		Relationship: rel,
	})
	return err
}

// RefreshCharacterManager asks the host to refresh the character manager.
func (c *Client) RefreshCharacterManager(ctx context.Context) error {
	_, err := c.invoke(ctx, wire.OpRefreshCharacterManager, nil)
	return err
}

// SearchStories resolves free-text input to matching stories.
func (c *Client) SearchStories(ctx context.Context, query, timelineID string) ([]entities.Story, error) {
	req := wire.StorySearchRequest{Query: query, TimelineID: timelineID}
	var resp wire.StorySearchResponse
	if _, err := c.invokeInto(ctx, wire.OpStorySearch, req, &resp); err != nil {
		return nil, err
	}
	return resp.Stories, nil
}

// Item fetches an item by ID. A missing item comes back nil.
func (c *Client) Item(ctx context.Context, id string) (*entities.Item, error) {
	var resp wire.ItemResponse
	if _, err := c.invokeInto(ctx, wire.OpGetItem, wire.ItemRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return resp.Item, nil
}

// Items returns all items on a timeline in position order.
func (c *Client) Items(ctx context.Context, timelineID string) ([]entities.Item, error) {
	var resp wire.ItemListResponse
	if _, err := c.invokeInto(ctx, wire.OpListItems, wire.ItemListRequest{TimelineID: timelineID}, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// CreateItem persists a new timeline item.
func (c *Client) CreateItem(ctx context.Context, item *entities.Item) error {
	_, err := c.invoke(ctx, wire.OpCreateItem, item)
	return err
}

// UpdateItem replaces the item with the given ID.
func (c *Client) UpdateItem(ctx context.Context, id string, item *entities.Item) error {
	_, err := c.invoke(ctx, wire.OpUpdateItem, wire.UpdateItemRequest{ID: id, Item: item})
	return err
}

// CreateCharacter persists a new character. Other connected editors receive
// a character-created notification.
func (c *Client) CreateCharacter(ctx context.Context, ch entities.Character) (entities.Character, error) {
	var resp wire.CharacterResponse
	if _, err := c.invokeInto(ctx, wire.OpCreateCharacter, wire.CharacterRequest{Character: ch}, &resp); err != nil {
		return entities.Character{}, err
	}
	return resp.Character, nil
}

// UpdateCharacter replaces a character. Other connected editors receive a
// character-updated notification.
func (c *Client) UpdateCharacter(ctx context.Context, ch entities.Character) (entities.Character, error) {
	var resp wire.CharacterResponse
	if _, err := c.invokeInto(ctx, wire.OpUpdateCharacter, wire.CharacterRequest{Character: ch}, &resp); err != nil {
		return entities.Character{}, err
	}
	return resp.Character, nil
}

// CreateStory persists a new story.
func (c *Client) CreateStory(ctx context.Context, story entities.Story) (entities.Story, error) {
	var resp wire.StoryResponse
	if _, err := c.invokeInto(ctx, wire.OpCreateStory, wire.StoryRequest{Story: story}, &resp); err != nil {
		return entities.Story{}, err
	}
	return resp.Story, nil
}
