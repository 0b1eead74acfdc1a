package preview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/atelierhq/atelier/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDocumentStore_PutGet(t *testing.T) {
	t.Parallel()

	s := NewDocumentStore(time.Minute, testutil.DiscardLogger())
	defer s.Close()

	doc := s.Put("<html></html>", "text/html")
	assert.NotEmpty(t, doc.ID)

	got, err := s.Get(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", got.Content)
	assert.Equal(t, "text/html", got.ContentType)
}

func TestDocumentStore_UnknownID(t *testing.T) {
	t.Parallel()

	s := NewDocumentStore(time.Minute, testutil.DiscardLogger())
	defer s.Close()

	_, err := s.Get("doc-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDocumentStore_ExpiredDocumentIsGone(t *testing.T) {
	t.Parallel()

	s := NewDocumentStore(time.Minute, testutil.DiscardLogger())
	defer s.Close()

	base := time.Now()
	offset := time.Duration(0)
	s.mu.Lock()
	s.now = func() time.Time { return base.Add(offset) }
	s.mu.Unlock()

	doc := s.Put("short lived", "text/html")

	_, err := s.Get(doc.ID)
	require.NoError(t, err)

	// Jump past the TTL: the document must read as missing even
	// before the janitor runs.
	offset = 2 * time.Minute
	_, err = s.Get(doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDocumentStore_JanitorPurges(t *testing.T) {
	t.Parallel()

	s := NewDocumentStore(20*time.Millisecond, testutil.DiscardLogger())
	defer s.Close()

	s.Put("a", "text/html")
	s.Put("b", "text/html")
	require.Equal(t, 2, s.Len())

	assert.Eventually(t, func() bool {
		return s.Len() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestDocumentStore_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	s := NewDocumentStore(time.Minute, testutil.DiscardLogger())
	s.Close()
	s.Close()
}
