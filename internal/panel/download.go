package panel

import (
	"regexp"

	"github.com/atelierhq/atelier/internal/artifact"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Download describes an artifact packaged for saving to disk.
type Download struct {
	Filename    string
	Content     string
	ContentType string
}

// DownloadArtifact prepares an artifact for download. The filename is
// the title with every non-alphanumeric rune replaced by an underscore,
// plus the extension for the artifact's language.
func (c *Controller) DownloadArtifact(artifactID string) (*Download, error) {
	a, err := c.registry.Get(artifactID)
	if err != nil {
		return nil, err
	}

	name := unsafeFilenameChars.ReplaceAllString(a.Title, "_")
	return &Download{
		Filename:    name + "." + artifact.Extension(a.Language),
		Content:     a.Code,
		ContentType: "text/plain; charset=utf-8",
	}, nil
}
