package driven

import "context"

// Clipboard writes text to the user's system clipboard.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}
