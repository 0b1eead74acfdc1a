package web

import (
	"github.com/atelierhq/atelier/internal/artifact"
	"github.com/atelierhq/atelier/internal/panel"
	"github.com/atelierhq/atelier/internal/playground"
	"github.com/atelierhq/atelier/internal/render"
)

// Session owns the per-session rendering state: the artifact registry, the
// markdown renderer bound to it, the panel controller, and the playground
// workspace. Nothing in here is a package-level global; the handlers receive
// a Session and multiple independent sessions can coexist in one process.
type Session struct {
	Registry  *artifact.Registry
	Renderer  *render.Renderer
	Panel     *panel.Controller
	Workspace *playground.Workspace
}

// NewSession wires a fresh registry, renderer, workspace, and panel
// controller together. compiler may be nil; typed playground buffers then
// fail with ErrNoCompiler when run.
func NewSession(compiler playground.Compiler) *Session {
	registry := artifact.NewRegistry()
	workspace := playground.NewWorkspace(compiler)
	return &Session{
		Registry:  registry,
		Renderer:  render.New(registry),
		Panel:     panel.NewController(registry, workspace),
		Workspace: workspace,
	}
}

// Reset drops all registered artifacts and closes the panel. Called when the
// active chat is cleared or switched away; the registry is re-populated when
// the new chat's messages are rendered.
func (s *Session) Reset() {
	s.Registry.Reset()
	s.Panel.Close()
}
