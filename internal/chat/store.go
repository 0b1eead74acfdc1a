package chat

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/storage"
)

// Store is the chat persistence contract shared by the in-memory and
// PostgreSQL implementations.
type Store interface {
	Create(ctx context.Context) (*Chat, error)
	Get(ctx context.Context, id string) (*Chat, error)
	List(ctx context.Context) ([]Summary, error)
	Append(ctx context.Context, chatID, role, content string, files []FileRef) (*Message, error)
	Clear(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Active(ctx context.Context) (string, error)
	SetActive(ctx context.Context, id string) error
}

// MemoryStore keeps chats in memory and snapshots the whole list through
// the storage collaborator after every mutation. Snapshot failures are
// logged and otherwise ignored: persistence degrades silently, it never
// blocks the chat flow.
//
// Safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	chats   map[string]*Chat
	order   []string // insertion order, for stable listing before sort
	active  string
	backing storage.Store
	logger  *slog.Logger
	now     func() time.Time
}

// NewMemoryStore creates a store, restoring the previous snapshot from
// backing when one exists and validates. A missing, unreadable, or
// malformed snapshot falls back to a single fresh chat with a warning.
// backing may be nil to disable persistence. logger nil means
// slog.Default().
func NewMemoryStore(backing storage.Store, logger *slog.Logger) *MemoryStore {
	if logger == nil {
		logger = slog.Default()
	}
	s := &MemoryStore{
		chats:   make(map[string]*Chat),
		backing: backing,
		logger:  logger,
		now:     time.Now,
	}

	if backing != nil {
		s.restore()
	}
	if len(s.chats) == 0 {
		s.createLocked()
	}
	return s
}

// Create adds a new empty chat and makes it active.
func (s *MemoryStore) Create(_ context.Context) (*Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.createLocked()
	s.persistLocked()
	return c.clone(), nil
}

func (s *MemoryStore) createLocked() *Chat {
	now := s.now()
	c := &Chat{
		ID:        "chat-" + uuid.NewString(),
		Title:     DefaultTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.chats[c.ID] = c
	s.order = append(s.order, c.ID)
	s.active = c.ID
	return c
}

// Get returns a copy of the chat with the given id.
func (s *MemoryStore) Get(_ context.Context, id string) (*Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c.clone(), nil
}

// List returns chat summaries ordered by UpdatedAt descending.
func (s *MemoryStore) List(_ context.Context) ([]Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Summary, 0, len(s.order))
	for _, id := range s.order {
		c := s.chats[id]
		out = append(out, Summary{
			ID:           c.ID,
			Title:        c.Title,
			MessageCount: len(c.Messages),
			UpdatedAt:    c.UpdatedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// Append adds a message to a chat. The first user message sets the chat
// title. Returns the stored message.
func (s *MemoryStore) Append(_ context.Context, chatID, role, content string, files []FileRef) (*Message, error) {
	if role != RoleUser && role != RoleAssistant {
		return nil, ErrInvalidRole
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[chatID]
	if !ok {
		return nil, ErrNotFound
	}

	msg := Message{
		ID:        "msg-" + uuid.NewString(),
		Role:      role,
		Content:   content,
		Files:     files,
		Timestamp: s.now(),
	}
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = msg.Timestamp

	if role == RoleUser && len(c.Messages) == 1 {
		c.Title = DeriveTitle(content)
	}

	s.persistLocked()
	return &msg, nil
}

// Clear empties a chat's messages and resets its title.
func (s *MemoryStore) Clear(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[id]
	if !ok {
		return ErrNotFound
	}

	c.Messages = nil
	c.Title = DefaultTitle
	c.UpdatedAt = s.now()
	s.persistLocked()
	return nil
}

// Delete removes a chat. Deleting the last remaining chat fails with
// ErrLastChat. Deleting the active chat activates the most recently
// updated survivor.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chats[id]; !ok {
		return ErrNotFound
	}
	if len(s.chats) <= 1 {
		return ErrLastChat
	}

	delete(s.chats, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	if s.active == id {
		var newest *Chat
		for _, c := range s.chats {
			if newest == nil || c.UpdatedAt.After(newest.UpdatedAt) {
				newest = c
			}
		}
		s.active = newest.ID
	}

	s.persistLocked()
	return nil
}

// Active returns the id of the active chat.
func (s *MemoryStore) Active(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active, nil
}

// SetActive switches the active chat.
func (s *MemoryStore) SetActive(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[id]; !ok {
		return ErrNotFound
	}
	s.active = id
	s.persistLocked()
	return nil
}

func (c *Chat) clone() *Chat {
	out := *c
	out.Messages = make([]Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return &out
}
