package artifact

import "strings"

// titles maps known language tags to display titles. Unmapped tags fall
// back to "<TAG-UPPERCASE> Code".
var titles = map[string]string{
	"html":       "HTML Document",
	"css":        "CSS Styles",
	"javascript": "JavaScript Code",
	"js":         "JavaScript Code",
	"typescript": "TypeScript Code",
	"ts":         "TypeScript Code",
	"jsx":        "React Component",
	"tsx":        "React TypeScript Component",
	"python":     "Python Script",
	"java":       "Java Code",
	"cpp":        "C++ Code",
	"c++":        "C++ Code",
	"c":          "C Code",
	"php":        "PHP Script",
	"ruby":       "Ruby Script",
	"go":         "Go Code",
	"rust":       "Rust Code",
	"swift":      "Swift Code",
	"kotlin":     "Kotlin Code",
	"json":       "JSON Data",
	"xml":        "XML Document",
	"yaml":       "YAML Config",
	"yml":        "YAML Config",
	"sql":        "SQL Query",
	"markdown":   "Markdown Document",
	"md":         "Markdown Document",
	"bash":       "Bash Script",
	"sh":         "Shell Script",
	"powershell": "PowerShell Script",
	"dockerfile": "Dockerfile",
	"makefile":   "Makefile",
}

// extensions maps language tags to download file extensions. Unknown tags
// fall back to "txt".
var extensions = map[string]string{
	"javascript": "js",
	"js":         "js",
	"typescript": "ts",
	"ts":         "ts",
	"jsx":        "jsx",
	"tsx":        "tsx",
	"html":       "html",
	"css":        "css",
	"python":     "py",
	"java":       "java",
	"cpp":        "cpp",
	"c++":        "cpp",
	"c":          "c",
	"php":        "php",
	"ruby":       "rb",
	"go":         "go",
	"rust":       "rs",
	"swift":      "swift",
	"kotlin":     "kt",
	"json":       "json",
	"xml":        "xml",
	"yaml":       "yml",
	"yml":        "yml",
	"sql":        "sql",
	"markdown":   "md",
	"md":         "md",
	"bash":       "sh",
	"sh":         "sh",
	"powershell": "ps1",
	"dockerfile": "dockerfile",
	"makefile":   "makefile",
}

// Title derives a human-readable label from a language tag.
func Title(language string) string {
	if t, ok := titles[fold(language)]; ok {
		return t
	}
	return strings.ToUpper(language) + " Code"
}

// Extension returns the download file extension for a language tag.
func Extension(language string) string {
	if ext, ok := extensions[fold(language)]; ok {
		return ext
	}
	return "txt"
}
