package render

import (
	"bytes"
	stdhtml "html"
	"io"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

var (
	highlightStyle = styles.Get("github")

	// The formatter emits bare spans; writeHighlighted supplies the
	// surrounding pre/code so the language class survives highlighting.
	highlightFormatter = chromahtml.New(
		chromahtml.WithClasses(false),
		chromahtml.PreventSurroundingPre(true),
	)
)

// writeHighlighted writes code as highlighted HTML inside
// <pre><code class="language-X">. Unknown languages go through lexer
// analysis, and any highlighting failure degrades to an escaped pre
// block so the code always shows up.
func writeHighlighted(w io.Writer, code, language string) {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		writeEscaped(w, code, language)
		return
	}

	var body bytes.Buffer
	if err := highlightFormatter.Format(&body, highlightStyle, iterator); err != nil {
		writeEscaped(w, code, language)
		return
	}

	_, _ = io.WriteString(w, `<pre><code class="language-`+stdhtml.EscapeString(language)+`">`)
	_, _ = w.Write(body.Bytes())
	_, _ = io.WriteString(w, "</code></pre>")
}

func writeEscaped(w io.Writer, code, language string) {
	_, _ = io.WriteString(w, `<pre><code class="language-`+stdhtml.EscapeString(language)+`">`)
	_, _ = io.WriteString(w, stdhtml.EscapeString(code))
	_, _ = io.WriteString(w, "</code></pre>")
}
