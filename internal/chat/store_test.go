package chat

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/atelier/internal/storage"
	"github.com/atelierhq/atelier/internal/testutil"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	return NewMemoryStore(nil, testutil.DiscardLogger())
}

func TestMemoryStore_StartsWithOneChat(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, DefaultTitle, list[0].Title)

	active, err := s.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, list[0].ID, active)
}

func TestMemoryStore_CreateActivatesNewChat(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.Create(ctx)
	require.NoError(t, err)

	active, err := s.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, c.ID, active)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestMemoryStore_AppendSetsTitleFromFirstUserMessage(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	active, err := s.Active(ctx)
	require.NoError(t, err)

	_, err = s.Append(ctx, active, RoleUser, "explain generics in go please", nil)
	require.NoError(t, err)

	c, err := s.Get(ctx, active)
	require.NoError(t, err)
	assert.Equal(t, "explain generics in go please", c.Title)

	// Later messages leave the title alone.
	_, err = s.Append(ctx, active, RoleAssistant, "sure, generics are...", nil)
	require.NoError(t, err)
	_, err = s.Append(ctx, active, RoleUser, "another question entirely", nil)
	require.NoError(t, err)

	c, err = s.Get(ctx, active)
	require.NoError(t, err)
	assert.Equal(t, "explain generics in go please", c.Title)
	assert.Len(t, c.Messages, 3)
}

func TestMemoryStore_AppendRejectsUnknownRole(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	active, err := s.Active(ctx)
	require.NoError(t, err)

	_, err = s.Append(ctx, active, "system", "nope", nil)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestMemoryStore_AppendToMissingChat(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	_, err := s.Append(context.Background(), "chat-missing", RoleUser, "hi", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ClearResetsTitleAndMessages(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	active, err := s.Active(ctx)
	require.NoError(t, err)
	_, err = s.Append(ctx, active, RoleUser, "some question", nil)
	require.NoError(t, err)

	require.NoError(t, s.Clear(ctx, active))

	c, err := s.Get(ctx, active)
	require.NoError(t, err)
	assert.Empty(t, c.Messages)
	assert.Equal(t, DefaultTitle, c.Title)
}

func TestMemoryStore_DeleteLastChatRefused(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	active, err := s.Active(ctx)
	require.NoError(t, err)

	err = s.Delete(ctx, active)
	assert.ErrorIs(t, err, ErrLastChat)
}

func TestMemoryStore_DeleteActiveSwitchesToNewestSurvivor(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Active(ctx)
	require.NoError(t, err)

	second, err := s.Create(ctx)
	require.NoError(t, err)
	third, err := s.Create(ctx)
	require.NoError(t, err)

	// Touch the second chat so it is the most recently updated survivor.
	_, err = s.Append(ctx, second.ID, RoleUser, "keep me", nil)
	require.NoError(t, err)

	require.NoError(t, s.SetActive(ctx, third.ID))
	require.NoError(t, s.Delete(ctx, third.ID))

	active, err := s.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active)

	_, err = s.Get(ctx, third.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, first)
	assert.NoError(t, err)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	active, err := s.Active(ctx)
	require.NoError(t, err)
	_, err = s.Append(ctx, active, RoleUser, "original", nil)
	require.NoError(t, err)

	c, err := s.Get(ctx, active)
	require.NoError(t, err)
	c.Messages[0].Content = "mutated"
	c.Title = "mutated"

	again, err := s.Get(ctx, active)
	require.NoError(t, err)
	assert.Equal(t, "original", again.Messages[0].Content)
	assert.NotEqual(t, "mutated", again.Title)
}

func TestMemoryStore_PersistsAndRestores(t *testing.T) {
	t.Parallel()

	backing := storage.NewMemoryStore()
	ctx := context.Background()

	s := NewMemoryStore(backing, testutil.DiscardLogger())
	active, err := s.Active(ctx)
	require.NoError(t, err)
	_, err = s.Append(ctx, active, RoleUser, "remember me", nil)
	require.NoError(t, err)
	second, err := s.Create(ctx)
	require.NoError(t, err)

	// A new store over the same backing sees the same state.
	restored := NewMemoryStore(backing, testutil.DiscardLogger())
	list, err := restored.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	c, err := restored.Get(ctx, active)
	require.NoError(t, err)
	require.Len(t, c.Messages, 1)
	assert.Equal(t, "remember me", c.Messages[0].Content)

	restoredActive, err := restored.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, restoredActive)
}

func TestMemoryStore_CorruptSnapshotFallsBack(t *testing.T) {
	t.Parallel()

	backing := storage.NewMemoryStore()
	require.NoError(t, backing.Set(snapshotKey, "{not json"))

	s := NewMemoryStore(backing, testutil.DiscardLogger())
	list, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, DefaultTitle, list[0].Title)
}

func TestMemoryStore_InvalidSnapshotShapeFallsBack(t *testing.T) {
	t.Parallel()

	// Valid JSON, wrong shape: chats must be an array.
	raw, err := json.Marshal(map[string]any{"chats": "nope", "activeChatId": 7})
	require.NoError(t, err)

	backing := storage.NewMemoryStore()
	require.NoError(t, backing.Set(snapshotKey, string(raw)))

	s := NewMemoryStore(backing, testutil.DiscardLogger())
	list, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, DefaultTitle, list[0].Title)
}
