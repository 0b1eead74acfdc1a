package artifact

import "strings"

// DetectLanguage guesses a language tag from raw code when the fence
// carries none. Ordered substring checks, first match wins.
//
// This is a heuristic, not a parser. False positives are expected and
// acceptable: a C fragment with braces and semicolons will come back as
// javascript. Callers that need certainty must pass an explicit tag.
func DetectLanguage(code string) string {
	switch {
	case strings.Contains(code, "<!DOCTYPE") || strings.Contains(code, "<html>"):
		return "html"
	case strings.Contains(code, "function") && strings.Contains(code, "{"):
		return "javascript"
	case strings.Contains(code, "const ") || strings.Contains(code, "let ") || strings.Contains(code, "var "):
		return "javascript"
	case strings.Contains(code, "def ") && strings.Contains(code, ":"):
		return "python"
	case strings.Contains(code, "public class") || strings.Contains(code, "import java"):
		return "java"
	case strings.Contains(code, "#include") || strings.Contains(code, "int main"):
		return "cpp"
	case strings.Contains(code, "<?php"):
		return "php"
	case strings.Contains(code, "package main") || strings.Contains(code, "func main"):
		return "go"
	case strings.Contains(code, "fn main") || strings.Contains(code, "use std::"):
		return "rust"
	case strings.Contains(code, "{") && strings.Contains(code, "}") && strings.Contains(code, ";"):
		return "javascript"
	default:
		return "plaintext"
	}
}
