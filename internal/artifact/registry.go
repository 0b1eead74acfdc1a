package artifact

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry owns the id-to-artifact mapping for one rendered chat view.
//
// Identity lives here rather than in the rendered markup, which keeps
// artifact content out of HTML attributes and their size limits. Entries
// are insertion-ordered for inspection, but lookup is always by id and
// order is never semantically relevant.
//
// A Registry is valid for the lifetime of a chat session's rendered view:
// clearing or switching the active chat resets it, and a re-render of the
// new chat repopulates it. Registries are created per session and injected
// into the components that need them; there is no package-level instance.
//
// Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	byID  map[string]*Artifact
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*Artifact)}
}

// Register classifies code and records a new artifact for it, returning
// the stored artifact with a freshly generated id.
//
// Every call produces a distinct id: identical code appearing twice in one
// message yields two unrelated artifacts. Deduplication is intentionally
// absent.
func (r *Registry) Register(language, code string) *Artifact {
	code = strings.TrimSpace(code)
	a := &Artifact{
		ID:        "artifact-" + uuid.NewString(),
		Type:      TypeOf(language, code),
		Language:  fold(language),
		Code:      code,
		Title:     Title(language),
		CreatedAt: time.Now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[a.ID] = a
	r.order = append(r.order, a.ID)
	return a
}

// Get returns the artifact with the given id, or ErrNotFound.
func (r *Registry) Get(id string) (*Artifact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

// All returns the registered artifacts in insertion order.
func (r *Registry) All() []*Artifact {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Artifact, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Len returns the number of registered artifacts.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Reset drops all entries. Called when the active chat is cleared or
// switched away; the next render pass repopulates the registry.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = make(map[string]*Artifact)
	r.order = nil
}
