// Package panel drives the artifact side panel: which artifact is
// showing, whether the panel is open or fullscreen, and which tab is
// selected. Opening a web artifact also mirrors its code into the
// matching playground buffer.
package panel
