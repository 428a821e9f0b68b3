package driven

import (
	"context"

	"github.com/ericfisherdev/aireviewer/internal/domain/model"
)

// ReviewGateway is the port the review console submits code through. It is
// satisfied in-process by the application ReviewService and remotely by the
// HTTP gateway client.
type ReviewGateway interface {
	RequestReview(ctx context.Context, code string) (model.ReviewResult, error)
}
