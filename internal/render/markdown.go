package render

import (
	"html"
	"regexp"
	"strings"
)

// substitution is one step of the HTML renderer.
type substitution struct {
	re   *regexp.Regexp
	repl string
}

// Applied in order, each to the output of the previous step.
var rules = []substitution{
	{regexp.MustCompile(`(?m)^# (.*)$`), `<h1 class="note-h1">$1</h1>`},
	{regexp.MustCompile(`(?m)^## (.*)$`), `<h2 class="note-h2">$1</h2>`},
	{regexp.MustCompile(`(?m)^### (.*)$`), `<h3 class="note-h3">$1</h3>`},
	{regexp.MustCompile(`\*\*(.*?)\*\*`), `<strong>$1</strong>`},
	{regexp.MustCompile(`\*(.*?)\*`), `<em>$1</em>`},
	{regexp.MustCompile(`\n`), `<br>`},
}

var crlf = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// HTML converts note text to an HTML fragment. Only headings (levels 1-3),
// bold, italic and line breaks are handled. Input is not escaped. CRLF and
// lone CR line endings are treated as LF.
func HTML(src string) string {
	out := crlf.Replace(src)
	for _, r := range rules {
		out = r.re.ReplaceAllString(out, r.repl)
	}
	return out
}

// Document wraps HTML(src) in a standalone page titled title.
func Document(title, src string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title>\n</head>\n<body>\n<article class=\"note\">")
	b.WriteString(HTML(src))
	b.WriteString("</article>\n</body>\n</html>\n")
	return b.String()
}
