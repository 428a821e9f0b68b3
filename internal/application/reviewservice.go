package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ericfisherdev/aireviewer/internal/domain/model"
	"github.com/ericfisherdev/aireviewer/internal/domain/port/driven"
)

var (
	// ErrBlankCode is returned when the submitted code is empty or whitespace only.
	ErrBlankCode = errors.New("code must not be blank")
	// ErrCodeTooLarge is returned when the submitted code exceeds the configured limit.
	ErrCodeTooLarge = model.ErrCodeTooLarge
	// ErrProviderUnavailable wraps any failure reaching the review provider.
	ErrProviderUnavailable = errors.New("review provider unavailable")
)

// ReviewService is the gateway core: it validates submitted code, delegates
// to the review provider, and returns the provider's review. It holds no
// per-request state and is safe for concurrent use.
type ReviewService struct {
	provider     driven.ReviewProvider
	maxCodeBytes int64
	timeout      time.Duration
	logger       *slog.Logger
}

// Compile-time interface satisfaction check.
var _ driven.ReviewGateway = (*ReviewService)(nil)

// NewReviewService creates a ReviewService. maxCodeBytes <= 0 disables the
// size check; timeout <= 0 leaves the caller's deadline in charge.
func NewReviewService(provider driven.ReviewProvider, maxCodeBytes int64, timeout time.Duration, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		provider:     provider,
		maxCodeBytes: maxCodeBytes,
		timeout:      timeout,
		logger:       logger,
	}
}

// MaxCodeBytes returns the configured submission limit.
func (s *ReviewService) MaxCodeBytes() int64 {
	return s.maxCodeBytes
}

// Review validates code and obtains a review from the provider. Failures are
// reported as ErrBlankCode, ErrCodeTooLarge, model.ErrMalformedReview or
// ErrProviderUnavailable; the latter two wrap the provider's error.
func (s *ReviewService) Review(ctx context.Context, code string) (model.ReviewResult, error) {
	if strings.TrimSpace(code) == "" {
		return model.ReviewResult{}, ErrBlankCode
	}
	if s.maxCodeBytes > 0 && int64(len(code)) > s.maxCodeBytes {
		return model.ReviewResult{}, fmt.Errorf("%w: %d bytes, limit %d", ErrCodeTooLarge, len(code), s.maxCodeBytes)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := s.provider.Review(ctx, code)
	duration := time.Since(start).Round(time.Millisecond)

	if err != nil {
		s.logger.ErrorContext(ctx, "review provider call failed",
			"provider", s.provider.Name(),
			"code_bytes", len(code),
			"duration", duration,
			"error", err,
		)
		if errors.Is(err, model.ErrMalformedReview) {
			return model.ReviewResult{}, err
		}
		return model.ReviewResult{}, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	result = result.Normalized()

	s.logger.InfoContext(ctx, "review completed",
		"provider", s.provider.Name(),
		"code_bytes", len(code),
		"duration", duration,
		"issues", len(result.Issues),
		"has_refactor", result.HasRefactor(),
	)

	return result, nil
}

// RequestReview implements driven.ReviewGateway so the console can run
// in-process against the service.
func (s *ReviewService) RequestReview(ctx context.Context, code string) (model.ReviewResult, error) {
	return s.Review(ctx, code)
}
