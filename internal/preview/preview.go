package preview

import (
	stdhtml "html"
	"strings"

	"github.com/atelierhq/atelier/internal/render"
)

// WrapHTML ensures content is a complete HTML document. Fragments are
// wrapped in a minimal shell; anything that already carries a doctype
// or <html> tag passes through untouched.
func WrapHTML(content string) string {
	if strings.Contains(content, "<!DOCTYPE") || strings.Contains(content, "<html>") {
		return content
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	b.WriteString(`<meta charset="UTF-8">` + "\n")
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1.0">` + "\n")
	b.WriteString("<title>Preview</title>\n")
	b.WriteString("<style>\n")
	b.WriteString("body { margin: 0; padding: 20px; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; }\n")
	b.WriteString("</style>\n</head>\n<body>\n")
	b.WriteString(content)
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}

// MarkdownPreview renders markdown for the preview tab. Render failures
// produce a visible error panel instead of an error return, matching
// the degrade-visibly behavior of the HTML playground.
func MarkdownPreview(markdown string) string {
	out, err := render.Markdown(markdown)
	if err != nil {
		return `<div class="markdown-error" style="color: #e53e3e; padding: 20px; background: #fed7d7; border-radius: 6px; margin: 20px;">` +
			`<strong>Markdown rendering failed:</strong><br>` +
			stdhtml.EscapeString(err.Error()) +
			`</div>`
	}
	return `<div class="markdown-preview">` + out + `</div>`
}
