package panel

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/atelierhq/atelier/internal/artifact"
	"github.com/atelierhq/atelier/internal/playground"
)

// View is a panel tab.
type View string

// Panel views. Preview covers both HTML rendering and markdown preview;
// which one an artifact gets is decided by its type at render time.
const (
	ViewCode       View = "code"
	ViewPreview    View = "preview"
	ViewPlayground View = "playground"
)

// Sentinel errors returned by Controller operations.
var (
	ErrUnknownView = errors.New("unknown panel view")
	ErrPanelClosed = errors.New("panel is closed")
)

// State is a snapshot of the panel.
type State struct {
	ArtifactID string `json:"artifactId,omitempty"`
	Open       bool   `json:"open"`
	Fullscreen bool   `json:"fullscreen"`
	View       View   `json:"view,omitempty"`
}

// Controller is one session's panel state. Safe for concurrent use.
type Controller struct {
	mu        sync.Mutex
	registry  *artifact.Registry
	workspace *playground.Workspace

	artifactID string
	open       bool
	fullscreen bool
	view       View
}

// NewController creates a closed panel. workspace may be nil to skip
// playground mirroring.
func NewController(registry *artifact.Registry, workspace *playground.Workspace) *Controller {
	return &Controller{registry: registry, workspace: workspace}
}

// Open shows an artifact in the panel. HTML and markdown artifacts open
// on the preview tab, everything else starts on code. Web artifacts are
// also mirrored into the playground buffer matching their language.
func (c *Controller) Open(artifactID string) (State, error) {
	a, err := c.registry.Get(artifactID)
	if err != nil {
		return State{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.artifactID = a.ID
	c.open = true
	c.view = defaultView(a)

	if c.workspace != nil {
		if buffer, ok := playgroundBuffer(a.Language); ok {
			if err := c.workspace.Set(buffer, a.Code); err != nil {
				return State{}, fmt.Errorf("failed to mirror artifact into playground: %w", err)
			}
		}
	}

	return c.stateLocked(), nil
}

// Close hides the panel and drops fullscreen.
func (c *Controller) Close() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.open = false
	c.fullscreen = false
	return c.stateLocked()
}

// ToggleFullscreen flips fullscreen. The panel must be open.
func (c *Controller) ToggleFullscreen() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return State{}, ErrPanelClosed
	}
	c.fullscreen = !c.fullscreen
	return c.stateLocked(), nil
}

// RequestView switches the panel tab. The panel must be open. A view the
// open artifact does not support (preview on a python artifact, playground
// on anything outside the web set) is ignored: the current view stays and
// no error is returned.
func (c *Controller) RequestView(view View) (State, error) {
	switch view {
	case ViewCode, ViewPreview, ViewPlayground:
	default:
		return State{}, fmt.Errorf("%w: %q", ErrUnknownView, view)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return State{}, ErrPanelClosed
	}

	a, err := c.registry.Get(c.artifactID)
	if err != nil {
		return State{}, err
	}
	if viewSupported(a, view) {
		c.view = view
	}
	return c.stateLocked(), nil
}

// State returns a snapshot of the panel.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	return State{
		ArtifactID: c.artifactID,
		Open:       c.open,
		Fullscreen: c.fullscreen,
		View:       c.view,
	}
}

func defaultView(a *artifact.Artifact) View {
	if a.Type == artifact.TypeHTML || isMarkdown(a.Language) {
		return ViewPreview
	}
	return ViewCode
}

// viewSupported reports whether an artifact can show the given view.
// Code is always available, preview needs renderable content (HTML or
// markdown), playground needs a web-set language.
func viewSupported(a *artifact.Artifact, view View) bool {
	switch view {
	case ViewCode:
		return true
	case ViewPreview:
		return a.Type == artifact.TypeHTML || isMarkdown(a.Language)
	case ViewPlayground:
		return artifact.IsWebLanguage(a.Language)
	}
	return false
}

func isMarkdown(language string) bool {
	switch strings.ToLower(language) {
	case "markdown", "md":
		return true
	}
	return false
}

// playgroundBuffer maps an artifact language to the playground buffer
// it loads into. Non-web languages map to nothing.
func playgroundBuffer(language string) (playground.Buffer, bool) {
	switch strings.ToLower(language) {
	case "html":
		return playground.BufferMarkup, true
	case "css":
		return playground.BufferStyles, true
	case "javascript", "js", "jsx":
		return playground.BufferScript, true
	case "typescript", "ts", "tsx":
		return playground.BufferTyped, true
	}
	return "", false
}
