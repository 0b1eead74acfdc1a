package artifact_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atelierhq/atelier/internal/artifact"
)

func TestWorthy_LengthFloor(t *testing.T) {
	t.Parallel()

	// Shorter than 10 trimmed characters is never worthy, regardless of tag.
	for _, lang := range []string{"html", "python", "json", "plaintext", "brainfuck"} {
		assert.False(t, artifact.Worthy("x = 1", lang), "lang=%s", lang)
		assert.False(t, artifact.Worthy("   x = 1   \n", lang), "lang=%s padded", lang)
	}
}

func TestWorthy_KnownLanguages(t *testing.T) {
	t.Parallel()

	known := []string{
		// web set
		"html", "css", "javascript", "js", "typescript", "ts", "jsx", "tsx",
		// general-purpose set
		"python", "java", "cpp", "c", "php", "ruby", "go", "rust", "swift", "kotlin",
		// data/markup set
		"xml", "json", "yaml", "yml", "sql", "markdown", "md",
	}

	// Content is irrelevant for known tags as long as the floor is met.
	content := "aaaaaaaaaaaa"
	for _, lang := range known {
		assert.True(t, artifact.Worthy(content, lang), "lang=%s", lang)
		assert.True(t, artifact.Worthy(content, strings.ToUpper(lang)), "lang=%s uppercase", lang)
	}
}

func TestWorthy_Plaintext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		code string
		want bool
	}{
		{"console call", "console.log('hello')", true},
		{"shebang", "#!/bin/sh\necho hi", true},
		{"go keyword", "package things", true},
		{"indicator case-insensitive", "CONST VALUE = 10", true},
		{"single-line prose", "just some words here", false},
		{"multi-line prose", "just some words\nacross two lines", true}, // unknown-content fallback
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, artifact.Worthy(tt.code, "plaintext"))
		})
	}
}

func TestWorthy_UnknownLanguage(t *testing.T) {
	t.Parallel()

	// Unrecognized tags need a newline and more than the minimum length.
	assert.True(t, artifact.Worthy("MOVE A TO B\nADD 1 TO C", "cobol"))
	assert.False(t, artifact.Worthy("MOVE A TO B ADD 1 TO C", "cobol"), "single line")
	assert.False(t, artifact.Worthy("ab\ncd", "cobol"), "too short")
}

func TestTypeOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, artifact.TypeHTML, artifact.TypeOf("html", "whatever"))
	assert.Equal(t, artifact.TypeHTML, artifact.TypeOf("HTML", "whatever"))
	assert.Equal(t, artifact.TypeHTML, artifact.TypeOf("plaintext", "<!DOCTYPE html><p>x</p>"))
	assert.Equal(t, artifact.TypeHTML, artifact.TypeOf("xml", "<html><body></body></html>"))
	assert.Equal(t, artifact.TypeCode, artifact.TypeOf("python", "def f(): pass"))
	assert.Equal(t, artifact.TypeCode, artifact.TypeOf("javascript", "const x = 1"))
}

func TestTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		lang string
		want string
	}{
		{"html", "HTML Document"},
		{"css", "CSS Styles"},
		{"javascript", "JavaScript Code"},
		{"js", "JavaScript Code"},
		{"typescript", "TypeScript Code"},
		{"ts", "TypeScript Code"},
		{"jsx", "React Component"},
		{"tsx", "React TypeScript Component"},
		{"python", "Python Script"},
		{"java", "Java Code"},
		{"cpp", "C++ Code"},
		{"c++", "C++ Code"},
		{"c", "C Code"},
		{"php", "PHP Script"},
		{"ruby", "Ruby Script"},
		{"go", "Go Code"},
		{"rust", "Rust Code"},
		{"swift", "Swift Code"},
		{"kotlin", "Kotlin Code"},
		{"json", "JSON Data"},
		{"xml", "XML Document"},
		{"yaml", "YAML Config"},
		{"yml", "YAML Config"},
		{"sql", "SQL Query"},
		{"markdown", "Markdown Document"},
		{"md", "Markdown Document"},
		{"bash", "Bash Script"},
		{"sh", "Shell Script"},
		{"powershell", "PowerShell Script"},
		{"dockerfile", "Dockerfile"},
		{"makefile", "Makefile"},
		{"cobol", "COBOL Code"}, // unmapped fallback
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, artifact.Title(tt.lang))
		})
	}
}

func TestExtension(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "js", artifact.Extension("javascript"))
	assert.Equal(t, "py", artifact.Extension("python"))
	assert.Equal(t, "rs", artifact.Extension("rust"))
	assert.Equal(t, "yml", artifact.Extension("yaml"))
	assert.Equal(t, "sh", artifact.Extension("bash"))
	assert.Equal(t, "cpp", artifact.Extension("CPP"))
	assert.Equal(t, "txt", artifact.Extension("cobol"))
}
