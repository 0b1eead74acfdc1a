// Package render turns assistant markdown into HTML.
//
// Fenced code blocks run through the artifact classifier: blocks worth
// promoting are registered and replaced with an artifact container the
// client wires to the panel, everything else is syntax highlighted
// inline. Markdown renders plain markdown with highlighting only, for
// previews.
package render
