package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/atelier/internal/storage"
)

func newTestFileStore(t *testing.T) *storage.FileStore {
	t.Helper()
	s, err := storage.NewFileStore(filepath.Join(t.TempDir(), "data", "atelier.json"))
	require.NoError(t, err)
	return s
}

func TestFileStore_SetGet(t *testing.T) {
	t.Parallel()
	s := newTestFileStore(t)

	require.NoError(t, s.Set("settings", `{"model":"gpt-4"}`))

	got, err := s.Get("settings")
	require.NoError(t, err)
	assert.Equal(t, `{"model":"gpt-4"}`, got)
}

func TestFileStore_GetMissing(t *testing.T) {
	t.Parallel()
	s := newTestFileStore(t)

	_, err := s.Get("nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFileStore_Overwrite(t *testing.T) {
	t.Parallel()
	s := newTestFileStore(t)

	require.NoError(t, s.Set("k", "one"))
	require.NoError(t, s.Set("k", "two"))

	got, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "two", got)
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "atelier.json")

	first, err := storage.NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Set("k", "v"))

	second, err := storage.NewFileStore(path)
	require.NoError(t, err)
	got, err := second.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestFileStore_CorruptFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "atelier.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s, err := storage.NewFileStore(path)
	require.NoError(t, err)

	_, err = s.Get("k")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	s := storage.NewMemoryStore()

	_, err := s.Get("k")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Set("k", "v"))
	got, err := s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}
