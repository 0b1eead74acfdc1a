package artifact

import "time"

// Type classifies the content of an artifact.
type Type string

const (
	TypeCode   Type = "code"
	TypeHTML   Type = "html"
	TypeImage  Type = "image"
	TypeVideo  Type = "video"
	TypeAudio  Type = "audio"
	TypeCanvas Type = "canvas"
)

// Artifact is a promoted, interactively viewable unit of code extracted
// from a chat message.
//
// Code holds the exact trimmed source of the fenced block and is never
// mutated or re-escaped after creation; HTML escaping happens at render
// time only. ID is assigned by the Registry and is unique per detection,
// even for byte-identical code.
//
// Only TypeCode and TypeHTML are produced by the detection pipeline. The
// remaining types are reserved for media artifacts delivered by other
// channels.
type Artifact struct {
	ID        string
	Type      Type
	Language  string // lowercase fence tag or sniffed guess, e.g. "python"
	Code      string
	Title     string
	CreatedAt time.Time
}

// webLanguages is the set whose members are always artifact-worthy and are
// mirrored into the playground when the artifact is opened.
var webLanguages = map[string]bool{
	"html": true, "css": true,
	"javascript": true, "js": true,
	"typescript": true, "ts": true,
	"jsx": true, "tsx": true,
}

// IsWebLanguage reports whether lang belongs to the web set
// (html/css/javascript/typescript and their short and React variants).
func IsWebLanguage(lang string) bool {
	return webLanguages[fold(lang)]
}
