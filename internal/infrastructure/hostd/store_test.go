package hostd

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadline-app/threadline/internal/domain/entities"
	"github.com/threadline-app/threadline/internal/infrastructure/config"
)

func setupStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(config.SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.EnsureSchema(context.Background()))
	return store
}

func TestStore_RequiresPath(t *testing.T) {
	_, err := NewStore(config.SQLiteConfig{})
	assert.Error(t, err)
}

func TestStore_Characters(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	ch := &entities.Character{TimelineID: "tl-1", Name: "Alice"}
	require.NoError(t, store.SaveCharacter(ctx, ch))
	assert.NotEmpty(t, ch.ID, "insert assigns an ID")
	assert.False(t, ch.CreatedAt.IsZero())

	found, err := store.FindCharacter(ctx, ch.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Alice", found.Name)
	assert.Equal(t, "tl-1", found.TimelineID)

	ch.Name = "Alicia"
	require.NoError(t, store.SaveCharacter(ctx, ch))
	found, err = store.FindCharacter(ctx, ch.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", found.Name)

	missing, err := store.FindCharacter(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_Relationships(t *testing.T) {
	ctx := context.Background()

	t.Run("save assigns ID and round-trips all fields", func(t *testing.T) {
		store := setupStore(t)

		rel := &entities.Relationship{
			TimelineID:    "tl-1",
			Character1ID:  "char-a",
			Character2ID:  "char-b",
			Type:          entities.RelationCustom,
			CustomType:    "sworn protector",
			Degree:        "first",
			Modifier:      "estranged",
			Strength:      80,
			Bidirectional: true,
			Notes:         "since the siege",
		}
		require.NoError(t, store.SaveRelationship(ctx, rel))
		assert.NotEmpty(t, rel.ID)

		found, err := store.FindRelationship(ctx, rel.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, entities.RelationCustom, found.Type)
		assert.Equal(t, "sworn protector", found.CustomType)
		assert.Equal(t, "first", found.Degree)
		assert.Equal(t, "estranged", found.Modifier)
		assert.Equal(t, 80, found.Strength)
		assert.True(t, found.Bidirectional)
		assert.Equal(t, "since the siege", found.Notes)
	})

	t.Run("upsert preserves created_at", func(t *testing.T) {
		store := setupStore(t)

		rel := &entities.Relationship{
			TimelineID:   "tl-1",
			Character1ID: "char-a",
			Character2ID: "char-b",
			Type:         entities.RelationFriend,
		}
		require.NoError(t, store.SaveRelationship(ctx, rel))
		created := rel.CreatedAt

		rel.Notes = "updated"
		require.NoError(t, store.SaveRelationship(ctx, rel))

		found, err := store.FindRelationship(ctx, rel.ID)
		require.NoError(t, err)
		assert.WithinDuration(t, created, found.CreatedAt, time.Second)
		assert.Equal(t, "updated", found.Notes)
	})

	t.Run("between returns both directions", func(t *testing.T) {
		store := setupStore(t)

		forward := &entities.Relationship{
			TimelineID: "tl-1", Character1ID: "char-a", Character2ID: "char-b",
			Type: entities.RelationMentor,
		}
		reverse := &entities.Relationship{
			TimelineID: "tl-1", Character1ID: "char-b", Character2ID: "char-a",
			Type: entities.RelationStudent,
		}
		unrelated := &entities.Relationship{
			TimelineID: "tl-1", Character1ID: "char-a", Character2ID: "char-c",
			Type: entities.RelationFriend,
		}
		otherTimeline := &entities.Relationship{
			TimelineID: "tl-2", Character1ID: "char-a", Character2ID: "char-b",
			Type: entities.RelationFriend,
		}
		for _, rel := range []*entities.Relationship{forward, reverse, unrelated, otherTimeline} {
			require.NoError(t, store.SaveRelationship(ctx, rel))
		}

		between, err := store.RelationshipsBetween(ctx, "char-a", "char-b", "tl-1")
		require.NoError(t, err)
		require.Len(t, between, 2)

		ids := []string{between[0].ID, between[1].ID}
		assert.Contains(t, ids, forward.ID)
		assert.Contains(t, ids, reverse.ID)
	})

	t.Run("delete", func(t *testing.T) {
		store := setupStore(t)

		rel := &entities.Relationship{
			TimelineID: "tl-1", Character1ID: "char-a", Character2ID: "char-b",
			Type: entities.RelationAlly,
		}
		require.NoError(t, store.SaveRelationship(ctx, rel))

		count, err := store.CountRelationships(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		require.NoError(t, store.DeleteRelationship(ctx, rel.ID))

		count, err = store.CountRelationships(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)

		assert.Error(t, store.DeleteRelationship(ctx, rel.ID))
	})
}

func TestStore_Items(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	item := &entities.Item{
		TimelineID:  "tl-1",
		Title:       "The Siege",
		Description: "a long winter",
		Content:     "full text",
		StoryID:     "story-1",
		StoryTitle:  "First Age",
		Year:        412,
		Subtick:     3,
		Tags:        []string{"war", "winter"},
		Pictures: []entities.Picture{
			{Name: "wall.png", MediaType: "image/png", Data: "aGk=", Size: 2},
		},
	}
	require.NoError(t, store.SaveItem(ctx, item))
	assert.NotEmpty(t, item.ID)

	found, err := store.FindItem(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "The Siege", found.Title)
	assert.Equal(t, 412, found.Year)
	assert.Equal(t, 3, found.Subtick)
	assert.Equal(t, []string{"war", "winter"}, found.Tags)
	require.Len(t, found.Pictures, 1)
	assert.Equal(t, "wall.png", found.Pictures[0].Name)
	assert.Equal(t, "aGk=", found.Pictures[0].Data)

	missing, err := store.FindItem(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_ItemsByTimeline(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	late := &entities.Item{TimelineID: "tl-1", Title: "Aftermath", Year: 413, Subtick: 0}
	early := &entities.Item{TimelineID: "tl-1", Title: "The Siege", Year: 412, Subtick: 3}
	other := &entities.Item{TimelineID: "tl-2", Title: "Elsewhere", Year: 1, Subtick: 0}
	for _, item := range []*entities.Item{late, early, other} {
		require.NoError(t, store.SaveItem(ctx, item))
	}

	items, err := store.ItemsByTimeline(ctx, "tl-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "The Siege", items[0].Title, "position order")
	assert.Equal(t, "Aftermath", items[1].Title)
}

func TestStore_SearchStories(t *testing.T) {
	ctx := context.Background()
	store := setupStore(t)

	stories := []*entities.Story{
		{TimelineID: "tl-1", Title: "The First Age"},
		{TimelineID: "tl-1", Title: "Interregnum"},
		{TimelineID: "tl-1", Title: "Second Age Rising"},
		{TimelineID: "tl-2", Title: "First Contact"},
	}
	for _, st := range stories {
		require.NoError(t, store.SaveStory(ctx, st))
	}

	t.Run("case-insensitive substring match", func(t *testing.T) {
		got, err := store.SearchStories(ctx, "AGE", "tl-1", 0)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Second Age Rising", got[0].Title, "ordered by title")
		assert.Equal(t, "The First Age", got[1].Title)
	})

	t.Run("scoped to timeline", func(t *testing.T) {
		got, err := store.SearchStories(ctx, "first", "tl-1", 0)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "The First Age", got[0].Title)
	})

	t.Run("limit applies", func(t *testing.T) {
		got, err := store.SearchStories(ctx, "", "tl-1", 2)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("no match", func(t *testing.T) {
		got, err := store.SearchStories(ctx, "dragons", "tl-1", 0)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
