package chat

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/atelierhq/atelier/internal/storage"
)

// snapshotKey is the storage key the whole chat list is persisted under.
const snapshotKey = "chats"

// snapshot is the persisted shape: every chat plus the active selection.
type snapshot struct {
	Chats    []*Chat `json:"chats"`
	ActiveID string  `json:"activeChatId"`
}

var (
	snapshotSchemaOnce sync.Once
	snapshotSchema     *jsonschema.Resolved
	snapshotSchemaErr  error
)

// snapshotResolved builds the validation schema for the persisted shape
// once. Inference failures surface on first use, not at init.
func snapshotResolved() (*jsonschema.Resolved, error) {
	snapshotSchemaOnce.Do(func() {
		schema, err := jsonschema.For[snapshot](nil)
		if err != nil {
			snapshotSchemaErr = err
			return
		}
		snapshotSchema, snapshotSchemaErr = schema.Resolve(nil)
	})
	return snapshotSchema, snapshotSchemaErr
}

// persistLocked writes the current state through the backing store.
// Callers hold s.mu. Failures are logged, never returned: losing a
// snapshot must not fail the mutation that triggered it.
func (s *MemoryStore) persistLocked() {
	if s.backing == nil {
		return
	}

	snap := snapshot{
		Chats:    make([]*Chat, 0, len(s.order)),
		ActiveID: s.active,
	}
	for _, id := range s.order {
		snap.Chats = append(snap.Chats, s.chats[id])
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		s.logger.Warn("chat snapshot marshal failed", "error", err)
		return
	}
	if err := s.backing.Set(snapshotKey, string(raw)); err != nil {
		s.logger.Warn("chat snapshot write failed", "error", err)
	}
}

// restore loads the previous snapshot, validating it against the
// inferred schema before trusting it. Any failure leaves the store
// empty so the caller seeds a fresh chat.
func (s *MemoryStore) restore() {
	raw, err := s.backing.Get(snapshotKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("chat snapshot read failed, starting fresh", "error", err)
		}
		return
	}

	resolved, err := snapshotResolved()
	if err != nil {
		s.logger.Warn("chat snapshot schema unavailable, starting fresh", "error", err)
		return
	}

	var generic any
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		s.logger.Warn("chat snapshot corrupt, starting fresh", "error", err)
		return
	}
	if err := resolved.Validate(generic); err != nil {
		s.logger.Warn("chat snapshot failed validation, starting fresh", "error", err)
		return
	}

	var snap snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		s.logger.Warn("chat snapshot corrupt, starting fresh", "error", err)
		return
	}
	if len(snap.Chats) == 0 {
		return
	}

	for _, c := range snap.Chats {
		if c == nil || c.ID == "" {
			continue
		}
		if _, dup := s.chats[c.ID]; dup {
			continue
		}
		s.chats[c.ID] = c
		s.order = append(s.order, c.ID)
	}
	if _, ok := s.chats[snap.ActiveID]; ok {
		s.active = snap.ActiveID
	} else if len(s.order) > 0 {
		s.active = s.order[len(s.order)-1]
	}
}
