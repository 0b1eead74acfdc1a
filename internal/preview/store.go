package preview

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long a preview document stays retrievable.
const DefaultTTL = 10 * time.Second

// ErrNotFound is returned for unknown or expired documents.
var ErrNotFound = errors.New("preview document not found")

// Document is one servable preview.
type Document struct {
	ID          string
	Content     string
	ContentType string

	expiresAt time.Time
}

// DocumentStore hands out short-lived preview documents. Each document
// lives for the store's TTL, then a janitor goroutine drops it. Close
// must be called to stop the janitor.
//
// Safe for concurrent use.
type DocumentStore struct {
	mu     sync.Mutex
	docs   map[string]*Document
	ttl    time.Duration
	logger *slog.Logger

	stop     chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

// NewDocumentStore creates a store. ttl <= 0 means DefaultTTL. logger
// nil means slog.Default().
func NewDocumentStore(ttl time.Duration, logger *slog.Logger) *DocumentStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &DocumentStore{
		docs:   make(map[string]*Document),
		ttl:    ttl,
		logger: logger,
		stop:   make(chan struct{}),
		now:    time.Now,
	}
	go s.janitor()
	return s
}

// Put stores content and returns the document handle. The document
// expires after the store's TTL.
func (s *DocumentStore) Put(content, contentType string) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := &Document{
		ID:          "doc-" + uuid.NewString(),
		Content:     content,
		ContentType: contentType,
		expiresAt:   s.now().Add(s.ttl),
	}
	s.docs[doc.ID] = doc
	return doc
}

// Get returns a document by id. Expired documents count as missing
// even if the janitor has not collected them yet.
func (s *DocumentStore) Get(id string) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok || s.now().After(doc.expiresAt) {
		return nil, ErrNotFound
	}
	return doc, nil
}

// Len reports how many documents are currently held, expired or not.
func (s *DocumentStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

// Close stops the janitor goroutine. Safe to call more than once.
func (s *DocumentStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *DocumentStore) janitor() {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.purge()
		}
	}
}

func (s *DocumentStore) purge() {
	s.mu.Lock()
	now := s.now()
	var dropped int
	for id, doc := range s.docs {
		if now.After(doc.expiresAt) {
			delete(s.docs, id)
			dropped++
		}
	}
	remaining := len(s.docs)
	s.mu.Unlock()

	if dropped > 0 {
		s.logger.Debug("purged preview documents", "dropped", dropped, "remaining", remaining)
	}
}
