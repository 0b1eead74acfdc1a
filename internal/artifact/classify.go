package artifact

import "strings"

// MinWorthyLength is the minimum trimmed code length for promotion.
const MinWorthyLength = 10

// generalLanguages always qualify regardless of content.
var generalLanguages = map[string]bool{
	"python": true, "java": true, "cpp": true, "c": true,
	"php": true, "ruby": true, "go": true, "rust": true,
	"swift": true, "kotlin": true,
}

// dataLanguages (markup and data formats) always qualify.
var dataLanguages = map[string]bool{
	"xml": true, "json": true, "yaml": true, "yml": true,
	"sql": true, "markdown": true, "md": true,
}

// codeIndicators signal code-likeness in blocks tagged plaintext.
// Matched case-insensitively.
var codeIndicators = []string{
	"function", "const", "let", "var", "def", "class", "import", "export",
	"document.", "console.", "<?php", "#!/", "package", "func", "fn main",
	"#include", "using namespace", "public static", "private", "protected",
}

func fold(lang string) string { return strings.ToLower(lang) }

// Worthy reports whether a code block deserves promotion to an artifact.
//
// The cascade is permissive on purpose: known language tags qualify
// unconditionally, plaintext qualifies when it looks like code, and
// unknown tags qualify on any multi-line block above the length floor.
func Worthy(code, language string) bool {
	trimmed := strings.TrimSpace(code)
	if len(trimmed) < MinWorthyLength {
		return false
	}

	lang := fold(language)
	if webLanguages[lang] || generalLanguages[lang] || dataLanguages[lang] {
		return true
	}

	if lang == "plaintext" {
		lower := strings.ToLower(code)
		for _, ind := range codeIndicators {
			if strings.Contains(lower, ind) {
				return true
			}
		}
	}

	return strings.Contains(code, "\n") && len(trimmed) > MinWorthyLength
}

// TypeOf resolves the semantic type of a promoted block. HTML wins when the
// tag says so or the content carries document markers; everything else is
// generic code.
func TypeOf(language, code string) Type {
	if fold(language) == "html" ||
		strings.Contains(code, "<html>") || strings.Contains(code, "<!DOCTYPE") {
		return TypeHTML
	}
	return TypeCode
}
