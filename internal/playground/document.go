package playground

import "strings"

// BuildDocument wraps the three runnable pieces into a complete HTML
// document. The script runs inside a try/catch that appends a visible
// error banner to the body, so runtime failures show up in the frame
// instead of dying silently.
func BuildDocument(markup, styles, script string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	b.WriteString(`<meta charset="UTF-8">` + "\n")
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1.0">` + "\n")
	b.WriteString("<title>Playground</title>\n")
	b.WriteString("<style>\n")
	b.WriteString("body { margin: 0; padding: 20px; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; }\n")
	b.WriteString(styles)
	b.WriteString("\n</style>\n</head>\n<body>\n")
	b.WriteString(markup)
	b.WriteString("\n<script>\ntry {\n")
	b.WriteString(script)
	b.WriteString("\n} catch (error) {\n")
	b.WriteString(`document.body.innerHTML += '<div style="color: red; padding: 10px; background: #fee; border: 1px solid #fcc; border-radius: 4px; margin: 10px 0;"><strong>JavaScript Error:</strong> ' + error.message + '</div>';` + "\n")
	b.WriteString("console.error('Playground Error:', error);\n")
	b.WriteString("}\n</script>\n</body>\n</html>\n")
	return b.String()
}
