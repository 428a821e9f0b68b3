package driven

import (
	"context"

	"github.com/ericfisherdev/aireviewer/internal/domain/model"
)

// ReviewProvider defines the driven port for the external AI completion
// service. Input is raw source code; output is a structured review.
type ReviewProvider interface {
	Review(ctx context.Context, code string) (model.ReviewResult, error)
	// Name identifies the provider in logs, e.g. "openai".
	Name() string
}
