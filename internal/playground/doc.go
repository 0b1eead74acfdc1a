// Package playground holds the code playground workspace: four
// editable buffers (markup, styles, script, typed script) and a runner
// that assembles them into a self-contained HTML document.
//
// TypeScript compilation is delegated to a Compiler collaborator so the
// workspace does not care which compiler backs it. A failed run never
// touches the last good document.
package playground
