package reading

import (
	"regexp"
	"strings"
)

const (
	headingOpen    = "<h3>"
	headingClose   = "</h3>"
	paragraphOpen  = "<p>"
	paragraphClose = "</p>"
)

var boldRun = regexp.MustCompile(`\*\*(.*?)\*\*`)

// FormatInterpretation converts the backend's markdown-like text into HTML.
// Every **X** run becomes a heading, blank-line separated blocks become
// paragraphs, and blocks that already open with a heading keep it as is with
// any trailing text wrapped as a paragraph. Blocks are joined without separators.
func FormatInterpretation(raw string) string {
	text := boldRun.ReplaceAllString(raw, headingOpen+"${1}"+headingClose)
	var b strings.Builder
	for _, block := range strings.Split(text, "\n\n") {
		writeBlock(&b, block)
	}
	return b.String()
}

func writeBlock(b *strings.Builder, block string) {
	rest := strings.TrimSpace(block)
	for strings.HasPrefix(rest, headingOpen) {
		end := strings.Index(rest, headingClose)
		if end < 0 {
			break
		}
		end += len(headingClose)
		b.WriteString(rest[:end])
		rest = strings.TrimSpace(rest[end:])
	}
	if rest == "" {
		return
	}
	if strings.HasPrefix(rest, headingOpen) || strings.HasPrefix(rest, paragraphOpen) {
		b.WriteString(rest)
		return
	}
	b.WriteString(paragraphOpen)
	b.WriteString(rest)
	b.WriteString(paragraphClose)
}
