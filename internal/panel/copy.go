package panel

import (
	"fmt"
	"io"

	"github.com/atotto/clipboard"
)

// Copier puts artifact code somewhere the user can paste it from.
type Copier interface {
	Copy(text string) error
}

// ClipboardCopier writes to the system clipboard. When the clipboard is
// unavailable (headless hosts, missing xclip) it falls back to the
// configured writer so the code still lands somewhere visible.
type ClipboardCopier struct {
	// Fallback receives the text when the system clipboard fails.
	// nil means clipboard errors are returned to the caller.
	Fallback io.Writer
}

func (c *ClipboardCopier) Copy(text string) error {
	err := clipboard.WriteAll(text)
	if err == nil {
		return nil
	}
	if c.Fallback == nil {
		return fmt.Errorf("clipboard write failed: %w", err)
	}
	if _, werr := io.WriteString(c.Fallback, text); werr != nil {
		return fmt.Errorf("clipboard write failed (%v), fallback failed: %w", err, werr)
	}
	return nil
}

// CopyArtifact copies an artifact's code through the copier.
func (c *Controller) CopyArtifact(artifactID string, copier Copier) error {
	a, err := c.registry.Get(artifactID)
	if err != nil {
		return err
	}
	if err := copier.Copy(a.Code); err != nil {
		return fmt.Errorf("failed to copy artifact %s: %w", artifactID, err)
	}
	return nil
}
