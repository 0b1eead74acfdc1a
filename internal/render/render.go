package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/atelierhq/atelier/internal/artifact"
)

// Renderer renders assistant messages for one session. Code blocks that
// pass classification are registered in the session's registry and
// replaced with artifact containers.
type Renderer struct {
	md goldmark.Markdown
}

// New creates a message renderer bound to a registry. registry must not
// be nil.
func New(registry *artifact.Registry) *Renderer {
	return &Renderer{md: newMarkdown(&codeBlockRenderer{registry: registry})}
}

// Message renders markdown to HTML, promoting worthy code blocks to
// artifacts.
func (r *Renderer) Message(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render message: %w", err)
	}
	return buf.String(), nil
}

// Markdown renders markdown to HTML with syntax highlighting but no
// artifact detection. Used for markdown previews.
func Markdown(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := plainMarkdown.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

var plainMarkdown = newMarkdown(&codeBlockRenderer{})

func newMarkdown(blocks *codeBlockRenderer) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			renderer.WithNodeRenderers(util.Prioritized(blocks, 100)),
		),
	)
}
