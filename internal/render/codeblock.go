package render

import (
	"bytes"
	stdhtml "html"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	"github.com/atelierhq/atelier/internal/artifact"
)

// codeBlockRenderer replaces goldmark's default code block output. With
// a registry it promotes worthy blocks to artifact containers; without
// one it only highlights.
type codeBlockRenderer struct {
	registry *artifact.Registry
}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
	reg.Register(ast.KindCodeBlock, r.renderCodeBlock)
}

func (r *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	language := string(n.Language(source))
	code := blockText(n, source)
	if language == "" {
		language = artifact.DetectLanguage(code)
	}

	if r.registry != nil && artifact.Worthy(code, language) {
		a := r.registry.Register(language, code)
		writeContainer(w, a)
		return ast.WalkContinue, nil
	}

	writeHighlighted(w, code, language)
	return ast.WalkContinue, nil
}

// renderCodeBlock handles indented code blocks. No language fence means
// no detection, they stay inline.
func (r *codeBlockRenderer) renderCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	writeHighlighted(w, blockText(node, source), "")
	return ast.WalkContinue, nil
}

func blockText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}

// writeContainer emits the artifact container the client wires to the
// panel. The code itself stays in the registry, only metadata and the
// highlighted preview travel inline.
func writeContainer(w util.BufWriter, a *artifact.Artifact) {
	title := stdhtml.EscapeString(a.Title)
	language := stdhtml.EscapeString(a.Language)

	_, _ = w.WriteString(`<div class="artifact-container" data-artifact-id="` + a.ID + `"`)
	_, _ = w.WriteString(` data-type="` + string(a.Type) + `"`)
	_, _ = w.WriteString(` data-language="` + language + `"`)
	_, _ = w.WriteString(` data-title="` + title + `">`)
	_, _ = w.WriteString(`<div class="artifact-header">`)
	_, _ = w.WriteString(`<div class="artifact-info">`)
	_, _ = w.WriteString(`<span class="artifact-title">` + title + `</span>`)
	_, _ = w.WriteString(`<span class="artifact-language">` + language + `</span>`)
	_, _ = w.WriteString(`</div>`)
	_, _ = w.WriteString(actionButtons(a))
	_, _ = w.WriteString(`</div>`)
	_, _ = w.WriteString(`<div class="artifact-preview">`)
	writeHighlighted(w, a.Code, a.Language)
	_, _ = w.WriteString(`</div></div>`)
}

func isMarkdownLanguage(language string) bool {
	switch strings.ToLower(language) {
	case "markdown", "md":
		return true
	}
	return false
}

func actionButtons(a *artifact.Artifact) string {
	var b strings.Builder
	b.WriteString(`<div class="artifact-actions">`)
	b.WriteString(`<button class="artifact-btn copy-artifact-btn"></button>`)
	if artifact.IsWebLanguage(a.Language) {
		b.WriteString(`<button class="artifact-btn playground-artifact-btn"></button>`)
	}
	if a.Type == artifact.TypeHTML || isMarkdownLanguage(a.Language) {
		b.WriteString(`<button class="artifact-btn preview-artifact-btn"></button>`)
	}
	b.WriteString(`<button class="artifact-btn open-artifact-btn"></button>`)
	b.WriteString(`</div>`)
	return b.String()
}
