package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threadline-app/threadline/internal/domain/entities"
	"github.com/threadline-app/threadline/internal/domain/ports"
)

func TestCharacter_Integration_UpdateFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	socketPath, store := startDaemon(t)
	client := dialEditor(t, socketPath)
	observer := dialEditor(t, socketPath)

	created, err := client.CreateCharacter(ctx, entities.Character{TimelineID: "tl-1", Name: "Alice"})
	require.NoError(t, err)
	n := waitNotification(t, observer)
	assert.Equal(t, ports.NoteCharacterCreated, n.Type)

	t.Run("rename keeps identity and created_at", func(t *testing.T) {
		renamed, err := client.UpdateCharacter(ctx, entities.Character{
			ID:         created.ID,
			TimelineID: "tl-1",
			Name:       "Alicia",
		})
		require.NoError(t, err)
		assert.Equal(t, created.ID, renamed.ID)

		stored, err := store.FindCharacter(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, "Alicia", stored.Name)
		assert.False(t, stored.CreatedAt.IsZero())
		assert.WithinDuration(t, created.CreatedAt, stored.CreatedAt, time.Second)

		n := waitNotification(t, observer)
		assert.Equal(t, ports.NoteCharacterUpdated, n.Type)
	})

	t.Run("unknown id is rejected, nothing inserted", func(t *testing.T) {
		_, err := client.UpdateCharacter(ctx, entities.Character{
			ID:         "ghost",
			TimelineID: "tl-1",
			Name:       "Nobody",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "character not found")

		stored, err := store.FindCharacter(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, stored, "a failed update must not upsert")
	})
}
