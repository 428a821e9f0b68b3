package cli

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// renderMarkdown renders markdown text with glamour for terminal display.
// Falls back to the unrendered text if glamour fails.
func renderMarkdown(markdown string, width int) string {
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return strings.TrimSpace(markdown)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return strings.TrimSpace(markdown)
	}
	return strings.TrimSpace(out)
}
