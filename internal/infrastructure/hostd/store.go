package hostd

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/threadline-app/threadline/internal/domain/entities"
	"github.com/threadline-app/threadline/internal/infrastructure/config"
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// Store owns the daemon's persisted state: characters, relationships,
// items, and stories, all scoped by timeline.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the SQLite database at the configured path.
func NewStore(cfg config.SQLiteConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Enable foreign keys for referential integrity
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Enable WAL mode for better concurrent read/write performance
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Store{db: db, path: cfg.Path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Characters (people on a timeline)
	CREATE TABLE IF NOT EXISTS characters (
		id TEXT PRIMARY KEY,
		timeline_id TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_characters_timeline ON characters(timeline_id);

	-- Character relationships (directed links between two characters)
	CREATE TABLE IF NOT EXISTS relationships (
		id TEXT PRIMARY KEY,
		timeline_id TEXT NOT NULL,
		character_1_id TEXT NOT NULL,
		character_2_id TEXT NOT NULL,
		relationship_type TEXT NOT NULL,
		custom_relationship_type TEXT NOT NULL DEFAULT '',
		relationship_degree TEXT NOT NULL DEFAULT '',
		relationship_modifier TEXT NOT NULL DEFAULT '',
		relationship_strength INTEGER NOT NULL DEFAULT 50,
		is_bidirectional INTEGER NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_relationships_pair
		ON relationships(timeline_id, character_1_id, character_2_id);
	CREATE INDEX IF NOT EXISTS idx_relationships_type ON relationships(relationship_type);

	-- Timeline items (events, notes, scenes)
	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		timeline_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		story_id TEXT NOT NULL DEFAULT '',
		story_title TEXT NOT NULL DEFAULT '',
		year INTEGER NOT NULL,
		subtick INTEGER NOT NULL,
		tags TEXT NOT NULL DEFAULT '[]',
		pictures TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_items_timeline ON items(timeline_id);
	CREATE INDEX IF NOT EXISTS idx_items_position ON items(timeline_id, year, subtick);

	-- Stories (narrative arcs items attach to)
	CREATE TABLE IF NOT EXISTS stories (
		id TEXT PRIMARY KEY,
		timeline_id TEXT NOT NULL,
		title TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_stories_timeline ON stories(timeline_id);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Character operations

// SaveCharacter inserts or updates a character, assigning an ID when absent.
func (s *Store) SaveCharacter(ctx context.Context, ch *entities.Character) error {
	now := timeNow()
	if ch.ID == "" {
		ch.ID = uuid.New().String()
		ch.CreatedAt = now
	}
	ch.UpdatedAt = now

	query := `
		INSERT INTO characters (id, timeline_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query,
		ch.ID, ch.TimelineID, ch.Name, ch.CreatedAt, ch.UpdatedAt); err != nil {
		return fmt.Errorf("saving character: %w", err)
	}
	return nil
}

// FindCharacter finds a character by ID. Returns nil when not found.
func (s *Store) FindCharacter(ctx context.Context, id string) (*entities.Character, error) {
	query := `SELECT id, timeline_id, name, created_at, updated_at FROM characters WHERE id = ?`
	row := s.db.QueryRowContext(ctx, query, id)

	var ch entities.Character
	err := row.Scan(&ch.ID, &ch.TimelineID, &ch.Name, &ch.CreatedAt, &ch.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding character: %w", err)
	}
	return &ch, nil
}

// Relationship operations

// SaveRelationship inserts or updates a relationship, assigning an ID when
// absent.
func (s *Store) SaveRelationship(ctx context.Context, rel *entities.Relationship) error {
	now := timeNow()
	if rel.ID == "" {
		rel.ID = uuid.New().String()
		rel.CreatedAt = now
	}
	rel.UpdatedAt = now

	query := `
		INSERT INTO relationships (
			id, timeline_id, character_1_id, character_2_id,
			relationship_type, custom_relationship_type,
			relationship_degree, relationship_modifier,
			relationship_strength, is_bidirectional, notes,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			character_1_id = excluded.character_1_id,
			character_2_id = excluded.character_2_id,
			relationship_type = excluded.relationship_type,
			custom_relationship_type = excluded.custom_relationship_type,
			relationship_degree = excluded.relationship_degree,
			relationship_modifier = excluded.relationship_modifier,
			relationship_strength = excluded.relationship_strength,
			is_bidirectional = excluded.is_bidirectional,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query,
		rel.ID, rel.TimelineID, rel.Character1ID, rel.Character2ID,
		string(rel.Type), rel.CustomType,
		rel.Degree, rel.Modifier,
		rel.Strength, rel.Bidirectional, rel.Notes,
		rel.CreatedAt, rel.UpdatedAt,
	); err != nil {
		return fmt.Errorf("saving relationship: %w", err)
	}
	return nil
}

// FindRelationship finds a relationship by ID. Returns nil when not found.
func (s *Store) FindRelationship(ctx context.Context, id string) (*entities.Relationship, error) {
	query := selectRelationship + ` WHERE id = ?`
	rels, err := s.queryRelationships(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if len(rels) == 0 {
		return nil, nil
	}
	return &rels[0], nil
}

// RelationshipsBetween returns all relationships between two characters, in
// either direction, scoped to a timeline. Direction narrowing is the
// editor's job, not the store's.
func (s *Store) RelationshipsBetween(ctx context.Context, character1ID, character2ID, timelineID string) ([]entities.Relationship, error) {
	query := selectRelationship + `
		WHERE timeline_id = ?
		  AND ((character_1_id = ? AND character_2_id = ?)
		    OR (character_1_id = ? AND character_2_id = ?))
		ORDER BY created_at
	`
	return s.queryRelationships(ctx, query, timelineID,
		character1ID, character2ID, character2ID, character1ID)
}

// DeleteRelationship deletes a relationship by ID.
func (s *Store) DeleteRelationship(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM relationships WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting relationship: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("relationship not found: %s", id)
	}
	return nil
}

// CountRelationships returns the total number of relationships.
func (s *Store) CountRelationships(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM relationships`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting relationships: %w", err)
	}
	return count, nil
}

const selectRelationship = `
	SELECT id, timeline_id, character_1_id, character_2_id,
	       relationship_type, custom_relationship_type,
	       relationship_degree, relationship_modifier,
	       relationship_strength, is_bidirectional, notes,
	       created_at, updated_at
	FROM relationships
`

func (s *Store) queryRelationships(ctx context.Context, query string, args ...any) ([]entities.Relationship, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying relationships: %w", err)
	}
	defer rows.Close()

	var result []entities.Relationship
	for rows.Next() {
		var rel entities.Relationship
		var relType string
		if err := rows.Scan(
			&rel.ID, &rel.TimelineID, &rel.Character1ID, &rel.Character2ID,
			&relType, &rel.CustomType,
			&rel.Degree, &rel.Modifier,
			&rel.Strength, &rel.Bidirectional, &rel.Notes,
			&rel.CreatedAt, &rel.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning relationship: %w", err)
		}
		rel.Type = entities.RelationType(relType)
		result = append(result, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating relationships: %w", err)
	}
	return result, nil
}

// Item operations

// SaveItem inserts or updates an item, assigning an ID when absent. Tags and
// pictures are stored as JSON columns.
func (s *Store) SaveItem(ctx context.Context, item *entities.Item) error {
	now := timeNow()
	if item.ID == "" {
		item.ID = uuid.New().String()
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	tags, err := json.Marshal(item.Tags)
	if err != nil {
		return fmt.Errorf("encoding tags: %w", err)
	}
	pics, err := json.Marshal(item.Pictures)
	if err != nil {
		return fmt.Errorf("encoding pictures: %w", err)
	}

	query := `
		INSERT INTO items (
			id, timeline_id, title, description, content,
			story_id, story_title, year, subtick, tags, pictures,
			created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			content = excluded.content,
			story_id = excluded.story_id,
			story_title = excluded.story_title,
			year = excluded.year,
			subtick = excluded.subtick,
			tags = excluded.tags,
			pictures = excluded.pictures,
			updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query,
		item.ID, item.TimelineID, item.Title, item.Description, item.Content,
		item.StoryID, item.StoryTitle, item.Year, item.Subtick,
		string(tags), string(pics),
		item.CreatedAt, item.UpdatedAt,
	); err != nil {
		return fmt.Errorf("saving item: %w", err)
	}
	return nil
}

// FindItem finds an item by ID. Returns nil when not found.
func (s *Store) FindItem(ctx context.Context, id string) (*entities.Item, error) {
	query := `
		SELECT id, timeline_id, title, description, content,
		       story_id, story_title, year, subtick, tags, pictures,
		       created_at, updated_at
		FROM items WHERE id = ?
	`
	row := s.db.QueryRowContext(ctx, query, id)

	var item entities.Item
	var tags, pics string
	err := row.Scan(
		&item.ID, &item.TimelineID, &item.Title, &item.Description, &item.Content,
		&item.StoryID, &item.StoryTitle, &item.Year, &item.Subtick, &tags, &pics,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding item: %w", err)
	}

	if err := json.Unmarshal([]byte(tags), &item.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags: %w", err)
	}
	if err := json.Unmarshal([]byte(pics), &item.Pictures); err != nil {
		return nil, fmt.Errorf("decoding pictures: %w", err)
	}
	return &item, nil
}

// ItemsByTimeline returns all items on a timeline ordered by position.
func (s *Store) ItemsByTimeline(ctx context.Context, timelineID string) ([]entities.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timeline_id, title, description, content,
		       story_id, story_title, year, subtick, tags, pictures,
		       created_at, updated_at
		FROM items WHERE timeline_id = ?
		ORDER BY year, subtick
	`, timelineID)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	var result []entities.Item
	for rows.Next() {
		var item entities.Item
		var tags, pics string
		if err := rows.Scan(
			&item.ID, &item.TimelineID, &item.Title, &item.Description, &item.Content,
			&item.StoryID, &item.StoryTitle, &item.Year, &item.Subtick, &tags, &pics,
			&item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &item.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags: %w", err)
		}
		if err := json.Unmarshal([]byte(pics), &item.Pictures); err != nil {
			return nil, fmt.Errorf("decoding pictures: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}
	return result, nil
}

// Story operations

// SaveStory inserts or updates a story, assigning an ID when absent.
func (s *Store) SaveStory(ctx context.Context, story *entities.Story) error {
	if story.ID == "" {
		story.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stories (id, timeline_id, title)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title
	`
	if _, err := s.db.ExecContext(ctx, query, story.ID, story.TimelineID, story.Title); err != nil {
		return fmt.Errorf("saving story: %w", err)
	}
	return nil
}

// SearchStories finds stories whose title contains the query,
// case-insensitive, scoped to a timeline.
func (s *Store) SearchStories(ctx context.Context, query, timelineID string, limit int) ([]entities.Story, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timeline_id, title FROM stories
		WHERE timeline_id = ? AND LOWER(title) LIKE ?
		ORDER BY title
		LIMIT ?
	`, timelineID, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("searching stories: %w", err)
	}
	defer rows.Close()

	var result []entities.Story
	for rows.Next() {
		var st entities.Story
		if err := rows.Scan(&st.ID, &st.TimelineID, &st.Title); err != nil {
			return nil, fmt.Errorf("scanning story: %w", err)
		}
		result = append(result, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stories: %w", err)
	}
	return result, nil
}
