package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ericfisherdev/aireviewer/internal/domain/model"
	"github.com/ericfisherdev/aireviewer/internal/domain/port/driven"
)

const (
	// DefaultCode is the buffer a new console starts with.
	DefaultCode = "// Paste your code here to get an AI review"
	// BlankCodeAdvisory is shown instead of submitting a blank buffer.
	BlankCodeAdvisory = "Please enter some code to review."
	// CodeTooLargeAdvisory is shown when the buffer is over the gateway's size
	// limit and the limit is not known to the console.
	CodeTooLargeAdvisory = "Code is too large to review. Shorten it and try again."
	// ReviewErrorSummary is the summary of the review synthesized when the
	// gateway fails or returns something unusable.
	ReviewErrorSummary = "❌ Error while fetching review. Please try again later."
	// ReviewErrorTitle titles the single critical issue of a synthesized review.
	ReviewErrorTitle = "API Error"
	// ReviewErrorDescription describes the single critical issue of a synthesized review.
	ReviewErrorDescription = "The review service could not be reached or returned an unexpected response. Try again in a moment."
	// CopyAckDuration is how long a "copied" acknowledgment stays visible.
	CopyAckDuration = 2 * time.Second

	codeTooLargeLimitFormat = "Code is too large to review. The limit is %d bytes; shorten it and try again."
)

var (
	// ErrReviewInFlight is returned when a review is requested while another
	// one from the same console is still outstanding.
	ErrReviewInFlight = errors.New("a review is already in progress")
	// ErrNoReviewInFlight is returned by Complete when nothing is loading.
	ErrNoReviewInFlight = errors.New("no review in progress")
	// ErrNothingToCopy is returned when the copy target holds no text.
	ErrNothingToCopy = errors.New("nothing to copy")
	// ErrNoClipboard is returned by Copy when no clipboard was supplied.
	ErrNoClipboard = errors.New("no clipboard available")
)

// ConsoleView is an immutable snapshot of a console for rendering.
type ConsoleView struct {
	State model.RequestState
	Code  string
	// Result is the current review, nil when none has completed or the last
	// action produced an advisory instead.
	Result *model.ReviewResult
	// Advisory is a static message shown in place of a review.
	Advisory         string
	CopiedOriginal   bool
	CopiedRefactored bool
}

// Loading reports whether a review is outstanding; the review action is
// disabled while it is true.
func (v ConsoleView) Loading() bool {
	return v.State == model.RequestStateLoading
}

// HasOutput reports whether the results pane has anything to show.
func (v ConsoleView) HasOutput() bool {
	return v.Loading() || v.Result != nil || v.Advisory != ""
}

// Console is the review console state machine. It owns the code buffer and
// the current review, and allows at most one outstanding review at a time.
// All methods are safe for concurrent use.
type Console struct {
	mu           sync.Mutex
	now          func() time.Time
	maxCodeBytes int64
	code         string
	state        model.RequestState
	result       *model.ReviewResult
	advisory     string
	copiedAt     map[model.CopyTarget]time.Time
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithClock overrides the time source used for copy acknowledgments.
func WithClock(now func() time.Time) ConsoleOption {
	return func(c *Console) {
		c.now = now
	}
}

// WithInitialCode overrides DefaultCode as the starting buffer.
func WithInitialCode(code string) ConsoleOption {
	return func(c *Console) {
		c.code = code
	}
}

// WithMaxCodeBytes makes StartReview settle with a size advisory instead of
// submitting a buffer longer than limit bytes. limit <= 0 disables the check.
func WithMaxCodeBytes(limit int64) ConsoleOption {
	return func(c *Console) {
		c.maxCodeBytes = limit
	}
}

// NewConsole creates an idle console holding DefaultCode.
func NewConsole(opts ...ConsoleOption) *Console {
	c := &Console{
		now:      time.Now,
		code:     DefaultCode,
		state:    model.RequestStateIdle,
		copiedAt: make(map[model.CopyTarget]time.Time, 2),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetCode replaces the code buffer. The buffer stays editable while loading.
func (c *Console) SetCode(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.code = code
}

// Code returns the current code buffer.
func (c *Console) Code() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.code
}

// State returns the current request state.
func (c *Console) State() model.RequestState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// StartReview begins a review of the current buffer. It returns the code to
// submit and true when the console moved to loading. A blank buffer, or one
// over the size limit, settles immediately with an advisory and returns
// false; nothing must be submitted. While loading, it returns ErrReviewInFlight and changes nothing.
func (c *Console) StartReview() (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == model.RequestStateLoading {
		return "", false, ErrReviewInFlight
	}

	c.result = nil
	c.advisory = ""
	delete(c.copiedAt, model.CopyTargetRefactored)

	if strings.TrimSpace(c.code) == "" {
		c.advisory = BlankCodeAdvisory
		c.state = model.RequestStateSettled
		return "", false, nil
	}
	if c.maxCodeBytes > 0 && int64(len(c.code)) > c.maxCodeBytes {
		c.advisory = c.tooLargeAdvisory()
		c.state = model.RequestStateSettled
		return "", false, nil
	}

	c.state = model.RequestStateLoading
	return c.code, true, nil
}

// Complete settles the outstanding review. On success result becomes the
// current review. A model.ErrCodeTooLarge failure settles with a size
// advisory; any other failure synthesizes a review with a single critical
// issue.
func (c *Console) Complete(result model.ReviewResult, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != model.RequestStateLoading {
		return ErrNoReviewInFlight
	}

	c.state = model.RequestStateSettled

	switch {
	case errors.Is(err, model.ErrCodeTooLarge):
		c.result = nil
		c.advisory = c.tooLargeAdvisory()
		return nil
	case err != nil:
		result = failedReview()
	default:
		result = result.Normalized()
	}

	c.result = &result
	return nil
}

// Review runs a full review cycle against gateway: StartReview, one gateway
// call, Complete. The gateway error, if any, is returned after the console
// has settled on the advisory or synthesized failure review.
func (c *Console) Review(ctx context.Context, gateway driven.ReviewGateway) error {
	code, submit, err := c.StartReview()
	if err != nil || !submit {
		return err
	}

	result, reviewErr := gateway.RequestReview(ctx, code)
	if err := c.Complete(result, reviewErr); err != nil {
		return err
	}
	if reviewErr != nil {
		return fmt.Errorf("requesting review: %w", reviewErr)
	}
	return nil
}

// Copy writes the target's text to clipboard and starts its acknowledgment.
// Acknowledgments for different targets are tracked independently. A review
// started or settled while the refactored code is being written replaces the
// copied text, so that copy is reported as ErrNothingToCopy and not
// acknowledged.
func (c *Console) Copy(ctx context.Context, clipboard driven.Clipboard, target model.CopyTarget) error {
	if clipboard == nil {
		return ErrNoClipboard
	}

	c.mu.Lock()
	source := c.result
	var text string
	switch target {
	case model.CopyTargetOriginal:
		text = c.code
	case model.CopyTargetRefactored:
		if c.result == nil || !c.result.HasRefactor() {
			c.mu.Unlock()
			return ErrNothingToCopy
		}
		text = c.result.RefactoredCode
	default:
		c.mu.Unlock()
		return fmt.Errorf("unknown copy target %q", target)
	}
	c.mu.Unlock()

	if err := clipboard.WriteText(ctx, text); err != nil {
		return fmt.Errorf("writing %s code to clipboard: %w", target, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if target == model.CopyTargetRefactored && c.result != source {
		return fmt.Errorf("%w: review changed while copying", ErrNothingToCopy)
	}
	c.copiedAt[target] = c.now()
	return nil
}

// Copied reports whether target's acknowledgment is still showing.
func (c *Console) Copied(target model.CopyTarget) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copiedLocked(target, c.now())
}

// Snapshot returns the console's current view.
func (c *Console) Snapshot() ConsoleView {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	view := ConsoleView{
		State:            c.state,
		Code:             c.code,
		Advisory:         c.advisory,
		CopiedOriginal:   c.copiedLocked(model.CopyTargetOriginal, now),
		CopiedRefactored: c.copiedLocked(model.CopyTargetRefactored, now),
	}
	if c.result != nil {
		r := *c.result
		r.Issues = append([]model.Issue(nil), c.result.Issues...)
		view.Result = &r
	}
	return view
}

func (c *Console) copiedLocked(target model.CopyTarget, now time.Time) bool {
	at, ok := c.copiedAt[target]
	return ok && now.Before(at.Add(CopyAckDuration))
}

func (c *Console) tooLargeAdvisory() string {
	if c.maxCodeBytes > 0 {
		return fmt.Sprintf(codeTooLargeLimitFormat, c.maxCodeBytes)
	}
	return CodeTooLargeAdvisory
}

func failedReview() model.ReviewResult {
	return model.ReviewResult{
		Summary: ReviewErrorSummary,
		Issues: []model.Issue{
			{
				Severity:    model.SeverityCritical,
				Title:       ReviewErrorTitle,
				Description: ReviewErrorDescription,
			},
		},
	}
}
