// Package preview serves rendered artifact previews. HTML artifacts
// become short-lived documents behind /preview/{id}, markdown artifacts
// render inline with an error panel on failure.
package preview
