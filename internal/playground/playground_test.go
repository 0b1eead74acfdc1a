package playground

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

// stubCompiler is a Compiler that returns a fixed result or error.
type stubCompiler struct {
	out string
	err error
}

func (c *stubCompiler) Compile(string) (string, error) {
	return c.out, c.err
}

func TestWorkspace_SetGet(t *testing.T) {
	t.Parallel()

	w := NewWorkspace(nil)
	require.NoError(t, w.Set(BufferMarkup, "<h1>hi</h1>"))

	got, err := w.Get(BufferMarkup)
	require.NoError(t, err)
	assert.Equal(t, "<h1>hi</h1>", got)

	// Unset buffers read as empty.
	got, err = w.Get(BufferStyles)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWorkspace_UnknownBuffer(t *testing.T) {
	t.Parallel()

	w := NewWorkspace(nil)
	assert.ErrorIs(t, w.Set("python", "print(1)"), ErrUnknownBuffer)
	_, err := w.Get("nope")
	assert.ErrorIs(t, err, ErrUnknownBuffer)
}

func TestWorkspace_RunAssemblesDocument(t *testing.T) {
	t.Parallel()

	w := NewWorkspace(nil)
	require.NoError(t, w.Set(BufferMarkup, "<h1>hello</h1>"))
	require.NoError(t, w.Set(BufferStyles, "h1 { color: blue; }"))
	require.NoError(t, w.Set(BufferScript, "console.log('run')"))

	doc, err := w.Run()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.Contains(t, doc, "<h1>hello</h1>")
	assert.Contains(t, doc, "h1 { color: blue; }")
	assert.Contains(t, doc, "console.log('run')")
	assert.Contains(t, doc, "try {")
	assert.Contains(t, doc, "JavaScript Error:")
	assert.Equal(t, doc, w.Document())

	// The document must parse as HTML with the expected structure.
	root, err := html.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	assert.NotNil(t, findElement(root, "style"))
	assert.NotNil(t, findElement(root, "script"))
	assert.NotNil(t, findElement(root, "h1"))
}

func TestWorkspace_RunCompilesTypedBuffer(t *testing.T) {
	t.Parallel()

	w := NewWorkspace(&stubCompiler{out: "var x = 1;"})
	require.NoError(t, w.Set(BufferScript, "ignored()"))
	require.NoError(t, w.Set(BufferTyped, "const x: number = 1"))

	doc, err := w.Run()
	require.NoError(t, err)
	assert.Contains(t, doc, "var x = 1;")
	assert.NotContains(t, doc, "ignored()")
}

func TestWorkspace_BlankTypedBufferSkipsCompiler(t *testing.T) {
	t.Parallel()

	// Compiler would fail if called, whitespace-only ts must not call it.
	w := NewWorkspace(&stubCompiler{err: errors.New("boom")})
	require.NoError(t, w.Set(BufferScript, "console.log('js')"))
	require.NoError(t, w.Set(BufferTyped, "   \n\t"))

	doc, err := w.Run()
	require.NoError(t, err)
	assert.Contains(t, doc, "console.log('js')")
}

func TestWorkspace_FailedRunKeepsPreviousDocument(t *testing.T) {
	t.Parallel()

	compiler := &stubCompiler{out: "var ok = true;"}
	w := NewWorkspace(compiler)
	require.NoError(t, w.Set(BufferTyped, "const ok = true"))

	first, err := w.Run()
	require.NoError(t, err)

	compiler.err = &CompileError{Message: "unexpected token", Line: 3, Column: 7}
	_, err = w.Run()
	require.Error(t, err)

	var cerr *CompileError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, 3, cerr.Line)
	assert.Equal(t, first, w.Document())
}

func TestWorkspace_RunWithoutCompiler(t *testing.T) {
	t.Parallel()

	w := NewWorkspace(nil)
	require.NoError(t, w.Set(BufferTyped, "const x = 1"))

	_, err := w.Run()
	assert.ErrorIs(t, err, ErrNoCompiler)
}

func TestWorkspace_Clear(t *testing.T) {
	t.Parallel()

	w := NewWorkspace(nil)
	require.NoError(t, w.Set(BufferMarkup, "<p>x</p>"))
	_, err := w.Run()
	require.NoError(t, err)

	w.Clear()

	got, err := w.Get(BufferMarkup)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, w.Document())
}

func TestCompileError_Error(t *testing.T) {
	t.Parallel()

	withPos := &CompileError{Message: "bad", Line: 2, Column: 5}
	assert.Equal(t, "compile error at 2:5: bad", withPos.Error())

	noPos := &CompileError{Message: "bad"}
	assert.Equal(t, "compile error: bad", noPos.Error())
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
