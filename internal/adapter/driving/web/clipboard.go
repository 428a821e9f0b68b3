package web

import (
	"context"

	"github.com/ericfisherdev/aireviewer/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Clipboard = (*browserClipboard)(nil)

// browserClipboard is the server side of a copy the browser already made:
// static/app.js writes the system clipboard inside the click handler, where
// browsers allow it, and only then posts the copy. WriteText records the
// size of the text the console resolved for the target. One is used per
// request.
type browserClipboard struct {
	copied int
}

// WriteText implements driven.Clipboard.
func (c *browserClipboard) WriteText(_ context.Context, text string) error {
	c.copied = len(text)
	return nil
}
