// Package hostd is a development stand-in for the threadline host process.
// It serves the editor invoke operations over a Unix domain socket and
// broadcasts character change notifications to connected editors.
package hostd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/threadline-app/threadline/internal/domain/entities"
	"github.com/threadline-app/threadline/internal/domain/ports"
	"github.com/threadline-app/threadline/internal/infrastructure/host/wire"
)

// Server accepts editor connections and dispatches their requests against
// the store.
type Server struct {
	socketPath string
	listener   net.Listener
	store      *Store
	logger     *slog.Logger

	mu    sync.Mutex
	conns map[*serverConn]bool

	shutdownOnce sync.Once
}

// serverConn is one connected editor.
type serverConn struct {
	conn  net.Conn
	enc   *json.Encoder
	encMu sync.Mutex
}

func (c *serverConn) send(msg wire.Message) error {
	c.encMu.Lock()
	defer c.encMu.Unlock()
	return c.enc.Encode(msg)
}

// NewServer creates a daemon listening on a Unix domain socket. A stale
// socket file from a previous run is removed first.
func NewServer(socketPath string, store *Store, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if dir := filepath.Dir(socketPath); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating socket directory: %w", err)
		}
	}
	if _, err := os.Stat(socketPath); err == nil {
		if err := os.Remove(socketPath); err != nil {
			return nil, fmt.Errorf("removing stale socket: %w", err)
		}
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("creating socket listener: %w", err)
	}

	return &Server{
		socketPath: socketPath,
		listener:   listener,
		store:      store,
		logger:     logger,
		conns:      make(map[*serverConn]bool),
	}, nil
}

// Addr returns the socket path the server listens on.
func (s *Server) Addr() string {
	return s.socketPath
}

// Start serves connections until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("host daemon listening", "socket", s.socketPath)

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accepting connection: %w", err)
		}
		go s.handleConn(ctx, conn)
	}
}

// Shutdown closes the listener and every connection.
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() {
		s.listener.Close()
		s.mu.Lock()
		for c := range s.conns {
			c.conn.Close()
		}
		s.mu.Unlock()
		os.Remove(s.socketPath)
	})
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	sc := &serverConn{conn: conn, enc: json.NewEncoder(conn)}

	s.mu.Lock()
	s.conns[sc] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.conns, sc)
		s.mu.Unlock()
		conn.Close()
	}()

	dec := json.NewDecoder(conn)
	for {
		var msg wire.Message
		if err := dec.Decode(&msg); err != nil {
			return
		}
		if msg.Kind != wire.KindRequest {
			s.logger.Warn("unexpected message kind from editor", "kind", msg.Kind)
			continue
		}
		resp := s.dispatch(ctx, sc, msg)
		if err := sc.send(resp); err != nil {
			s.logger.Warn("sending response", "op", msg.Op, "error", err)
			return
		}
	}
}

// broadcast pushes a notification to every connection except the origin.
func (s *Server) broadcast(origin *serverConn, note ports.NotificationType, payload any) {
	msg := wire.Message{Kind: wire.KindNotify, Note: string(note)}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			s.logger.Warn("encoding notification", "note", note, "error", err)
			return
		}
		msg.Payload = raw
	}

	s.mu.Lock()
	conns := make([]*serverConn, 0, len(s.conns))
	for c := range s.conns {
		if c != origin {
			conns = append(conns, c)
		}
	}
	s.mu.Unlock()

	for _, c := range conns {
		if err := c.send(msg); err != nil {
			s.logger.Warn("broadcasting notification", "note", note, "error", err)
		}
	}
}

func (s *Server) dispatch(ctx context.Context, src *serverConn, msg wire.Message) wire.Message {
	payload, err := s.handle(ctx, src, msg)
	resp := wire.Message{Kind: wire.KindResponse, ID: msg.ID, Op: msg.Op}
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	resp.Success = true
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			resp.Success = false
			resp.Error = fmt.Sprintf("encoding %s response: %v", msg.Op, err)
			return resp
		}
		resp.Payload = raw
	}
	return resp
}

func (s *Server) handle(ctx context.Context, src *serverConn, msg wire.Message) (any, error) {
	switch msg.Op {
	case wire.OpRelationshipEditorData:
		var req ports.RelationshipEditorRequest
		if err := decode(msg.Payload, &req); err != nil {
			return nil, err
		}
		return s.relationshipEditorData(ctx, req)

	case wire.OpRelationshipsBetween:
		var req wire.BetweenRequest
		if err := decode(msg.Payload, &req); err != nil {
			return nil, err
		}
		rels, err := s.store.RelationshipsBetween(ctx, req.Character1ID, req.Character2ID, req.TimelineID)
		if err != nil {
			return nil, err
		}
		return wire.BetweenResponse{Relationships: rels}, nil

	case wire.OpCreateRelationship:
		var rel entities.Relationship
		if err := decode(msg.Payload, &rel); err != nil {
			return nil, err
		}
		rel.ID = ""
		if err := s.store.SaveRelationship(ctx, &rel); err != nil {
			return nil, err
		}
		return nil, nil

	case wire.OpUpdateRelationship:
		var req wire.UpdateRelationshipRequest
		if err := decode(msg.Payload, &req); err != nil {
			return nil, err
		}
		if req.Relationship == nil {
			return nil, errors.New("relationship payload is required")
		}
		existing, err := s.store.FindRelationship(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("relationship not found: %s", req.ID)
		}
		rel := *req.Relationship
		rel.ID = req.ID
		rel.CreatedAt = existing.CreatedAt
		if err := s.store.SaveRelationship(ctx, &rel); err != nil {
			return nil, err
		}
		return nil, nil

	case wire.OpRefreshCharacterManager:
		// The daemon stands in for the character manager window; there is
		// nothing to redraw here.
		s.logger.Debug("character manager refresh requested")
		return nil, nil

	case wire.OpStorySearch:
		var req wire.StorySearchRequest
		if err := decode(msg.Payload, &req); err != nil {
			return nil, err
		}
		stories, err := s.store.SearchStories(ctx, req.Query, req.TimelineID, 0)
		if err != nil {
			return nil, err
		}
		// The same results also go out on the notification path so editors
		// resolving via pushes see them.
		go s.pushStoryResults(src, stories)
		return wire.StorySearchResponse{Stories: stories}, nil

	case wire.OpGetItem:
		var req wire.ItemRequest
		if err := decode(msg.Payload, &req); err != nil {
			return nil, err
		}
		item, err := s.store.FindItem(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		return wire.ItemResponse{Item: item}, nil

	case wire.OpListItems:
		var req wire.ItemListRequest
		if err := decode(msg.Payload, &req); err != nil {
			return nil, err
		}
		items, err := s.store.ItemsByTimeline(ctx, req.TimelineID)
		if err != nil {
			return nil, err
		}
		return wire.ItemListResponse{Items: items}, nil

	case wire.OpCreateItem:
		var item entities.Item
		if err := decode(msg.Payload, &item); err != nil {
			return nil, err
		}
		item.ID = ""
		if err := s.store.SaveItem(ctx, &item); err != nil {
			return nil, err
		}
		return nil, nil

	case wire.OpUpdateItem:
		var req wire.UpdateItemRequest
		if err := decode(msg.Payload, &req); err != nil {
			return nil, err
		}
		if req.Item == nil {
			return nil, errors.New("item payload is required")
		}
		existing, err := s.store.FindItem(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("item not found: %s", req.ID)
		}
		item := *req.Item
		item.ID = req.ID
		item.CreatedAt = existing.CreatedAt
		if err := s.store.SaveItem(ctx, &item); err != nil {
			return nil, err
		}
		return nil, nil

	case wire.OpCreateCharacter:
		var req wire.CharacterRequest
		if err := decode(msg.Payload, &req); err != nil {
			return nil, err
		}
		ch := req.Character
		ch.ID = ""
		if err := s.store.SaveCharacter(ctx, &ch); err != nil {
			return nil, err
		}
		s.broadcast(src, ports.NoteCharacterCreated, nil)
		return wire.CharacterResponse{Character: ch}, nil

	case wire.OpUpdateCharacter:
		var req wire.CharacterRequest
		if err := decode(msg.Payload, &req); err != nil {
			return nil, err
		}
		ch := req.Character
		if ch.ID == "" {
			return nil, errors.New("character id is required")
		}
		existing, err := s.store.FindCharacter(ctx, ch.ID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("character not found: %s", ch.ID)
		}
		ch.CreatedAt = existing.CreatedAt
		if err := s.store.SaveCharacter(ctx, &ch); err != nil {
			return nil, err
		}
		s.broadcast(src, ports.NoteCharacterUpdated, nil)
		return wire.CharacterResponse{Character: ch}, nil

	case wire.OpCreateStory:
		var req wire.StoryRequest
		if err := decode(msg.Payload, &req); err != nil {
			return nil, err
		}
		story := req.Story
		story.ID = ""
		if err := s.store.SaveStory(ctx, &story); err != nil {
			return nil, err
		}
		return wire.StoryResponse{Story: story}, nil

	default:
		return nil, fmt.Errorf("unknown operation: %s", msg.Op)
	}
}

// pushStoryResults sends search results to the requesting editor on the
// notification path.
func (s *Server) pushStoryResults(src *serverConn, stories []entities.Story) {
	raw, err := json.Marshal(wire.StorySearchResponse{Stories: stories})
	if err != nil {
		s.logger.Warn("encoding story results", "error", err)
		return
	}
	msg := wire.Message{
		Kind:    wire.KindNotify,
		Note:    string(ports.NoteStorySearchResults),
		Payload: raw,
	}
	if err := src.send(msg); err != nil {
		s.logger.Warn("pushing story results", "error", err)
	}
}

// relationshipEditorData assembles the session payload for a relationship
// editor: the character pair plus, for edits, the record being edited.
func (s *Server) relationshipEditorData(ctx context.Context, req ports.RelationshipEditorRequest) (*ports.RelationshipEditorData, error) {
	if req.RelationshipID != "" {
		rel, err := s.store.FindRelationship(ctx, req.RelationshipID)
		if err != nil {
			return nil, err
		}
		if rel == nil {
			return nil, fmt.Errorf("relationship not found: %s", req.RelationshipID)
		}
		c1, c2, err := s.characterPair(ctx, rel.Character1ID, rel.Character2ID)
		if err != nil {
			return nil, err
		}
		return &ports.RelationshipEditorData{
			Character1:   *c1,
			Character2:   *c2,
			IsEdit:       true,
			Relationship: rel,
			TimelineID:   rel.TimelineID,
		}, nil
	}

	c1, c2, err := s.characterPair(ctx, req.Character1ID, req.Character2ID)
	if err != nil {
		return nil, err
	}
	return &ports.RelationshipEditorData{
		Character1: *c1,
		Character2: *c2,
		IsEdit:     false,
		TimelineID: req.TimelineID,
	}, nil
}

func (s *Server) characterPair(ctx context.Context, id1, id2 string) (*entities.Character, *entities.Character, error) {
	c1, err := s.store.FindCharacter(ctx, id1)
	if err != nil {
		return nil, nil, err
	}
	if c1 == nil {
		return nil, nil, fmt.Errorf("character not found: %s", id1)
	}
	c2, err := s.store.FindCharacter(ctx, id2)
	if err != nil {
		return nil, nil, err
	}
	if c2 == nil {
		return nil, nil, fmt.Errorf("character not found: %s", id2)
	}
	return c1, c2, nil
}

func decode(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return errors.New("request payload is required")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding request payload: %w", err)
	}
	return nil
}
