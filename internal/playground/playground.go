package playground

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Buffer identifies one playground editor.
type Buffer string

// The four playground buffers.
const (
	BufferMarkup Buffer = "html"
	BufferStyles Buffer = "css"
	BufferScript Buffer = "js"
	BufferTyped  Buffer = "ts"
)

// Sentinel errors returned by Workspace operations.
var (
	ErrUnknownBuffer = errors.New("unknown playground buffer")
	ErrNoCompiler    = errors.New("no TypeScript compiler configured")
)

// Compiler turns TypeScript source into JavaScript.
type Compiler interface {
	Compile(src string) (string, error)
}

// CompileError reports a compilation failure with source position.
type CompileError struct {
	Message string
	Line    int
	Column  int
}

func (e *CompileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("compile error at %d:%d: %s", e.Line, e.Column, e.Message)
	}
	return "compile error: " + e.Message
}

// Workspace is one session's playground state. Safe for concurrent use.
type Workspace struct {
	mu       sync.Mutex
	buffers  map[Buffer]string
	document string
	compiler Compiler
}

// NewWorkspace creates an empty workspace. compiler may be nil, in
// which case running a non-empty typed buffer fails with ErrNoCompiler.
func NewWorkspace(compiler Compiler) *Workspace {
	return &Workspace{
		buffers:  make(map[Buffer]string),
		compiler: compiler,
	}
}

// Set replaces a buffer's content.
func (w *Workspace) Set(buffer Buffer, content string) error {
	if !validBuffer(buffer) {
		return fmt.Errorf("%w: %q", ErrUnknownBuffer, buffer)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buffers[buffer] = content
	return nil
}

// Get returns a buffer's content.
func (w *Workspace) Get(buffer Buffer) (string, error) {
	if !validBuffer(buffer) {
		return "", fmt.Errorf("%w: %q", ErrUnknownBuffer, buffer)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buffers[buffer], nil
}

// Buffers returns a copy of all buffer contents, keyed by buffer name.
func (w *Workspace) Buffers() map[Buffer]string {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make(map[Buffer]string, 4)
	for _, b := range []Buffer{BufferMarkup, BufferStyles, BufferScript, BufferTyped} {
		out[b] = w.buffers[b]
	}
	return out
}

// Run assembles the buffers into a runnable document. A non-blank typed
// buffer is compiled first and its output replaces the script buffer
// for this run. On any failure the previous document is kept.
func (w *Workspace) Run() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	script := w.buffers[BufferScript]
	if typed := w.buffers[BufferTyped]; strings.TrimSpace(typed) != "" {
		if w.compiler == nil {
			return "", ErrNoCompiler
		}
		compiled, err := w.compiler.Compile(typed)
		if err != nil {
			return "", fmt.Errorf("typescript compilation failed: %w", err)
		}
		script = compiled
	}

	w.document = BuildDocument(w.buffers[BufferMarkup], w.buffers[BufferStyles], script)
	return w.document, nil
}

// Document returns the output of the last successful Run, or the empty
// string when the playground has not run yet.
func (w *Workspace) Document() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.document
}

// Clear empties every buffer and drops the current document.
func (w *Workspace) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buffers = make(map[Buffer]string)
	w.document = ""
}

func validBuffer(b Buffer) bool {
	switch b {
	case BufferMarkup, BufferStyles, BufferScript, BufferTyped:
		return true
	}
	return false
}
