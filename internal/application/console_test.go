package application_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/aireviewer/internal/application"
	"github.com/ericfisherdev/aireviewer/internal/domain/model"
)

// --- Mock implementations ---

type mockGateway struct {
	mu      sync.Mutex
	result  model.ReviewResult
	err     error
	calls   int
	release chan struct{}
	started chan struct{}
}

func (m *mockGateway) RequestReview(_ context.Context, _ string) (model.ReviewResult, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.started != nil {
		close(m.started)
	}
	if m.release != nil {
		<-m.release
	}
	return m.result, m.err
}

func (m *mockGateway) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockClipboard struct {
	texts []string
	err   error
	// during runs inside WriteText, while the console is unlocked.
	during func()
}

func (m *mockClipboard) WriteText(_ context.Context, text string) error {
	if m.during != nil {
		m.during()
	}
	if m.err != nil {
		return m.err
	}
	m.texts = append(m.texts, text)
	return nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var consoleTestTime = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

// --- Tests ---

func TestConsole_InitialState(t *testing.T) {
	c := application.NewConsole()

	view := c.Snapshot()

	assert.Equal(t, model.RequestStateIdle, view.State)
	assert.Equal(t, application.DefaultCode, view.Code)
	assert.Nil(t, view.Result)
	assert.Empty(t, view.Advisory)
	assert.False(t, view.HasOutput())
}

func TestConsole_StartReviewMovesToLoading(t *testing.T) {
	c := application.NewConsole(application.WithInitialCode("x := 1"))

	code, submit, err := c.StartReview()

	require.NoError(t, err)
	assert.True(t, submit)
	assert.Equal(t, "x := 1", code)
	assert.Equal(t, model.RequestStateLoading, c.State())
	assert.True(t, c.Snapshot().Loading())
	assert.True(t, c.Snapshot().HasOutput())
}

func TestConsole_SecondStartWhileLoadingIsRejected(t *testing.T) {
	c := application.NewConsole(application.WithInitialCode("x := 1"))
	_, _, err := c.StartReview()
	require.NoError(t, err)

	_, submit, err := c.StartReview()

	require.ErrorIs(t, err, application.ErrReviewInFlight)
	assert.False(t, submit)
	assert.Equal(t, model.RequestStateLoading, c.State())
}

func TestConsole_BlankBufferShowsAdvisoryWithoutCall(t *testing.T) {
	for _, code := range []string{"", "   ", "\n\t"} {
		gw := &mockGateway{}
		c := application.NewConsole(application.WithInitialCode(code))

		err := c.Review(context.Background(), gw)

		require.NoError(t, err)
		assert.Zero(t, gw.callCount())
		view := c.Snapshot()
		assert.Equal(t, model.RequestStateSettled, view.State)
		assert.Equal(t, "Please enter some code to review.", view.Advisory)
		assert.Nil(t, view.Result)
	}
}

func TestConsole_OversizedBufferShowsLimitWithoutCall(t *testing.T) {
	gw := &mockGateway{}
	c := application.NewConsole(
		application.WithInitialCode(strings.Repeat("x", 64)),
		application.WithMaxCodeBytes(16),
	)

	err := c.Review(context.Background(), gw)

	require.NoError(t, err)
	assert.Zero(t, gw.callCount())
	view := c.Snapshot()
	assert.Equal(t, model.RequestStateSettled, view.State)
	assert.Nil(t, view.Result)
	assert.Contains(t, view.Advisory, "too large")
	assert.Contains(t, view.Advisory, "16 bytes")
}

func TestConsole_BufferAtLimitIsSubmitted(t *testing.T) {
	gw := &mockGateway{result: model.ReviewResult{Summary: "ok"}}
	c := application.NewConsole(
		application.WithInitialCode(strings.Repeat("x", 16)),
		application.WithMaxCodeBytes(16),
	)

	require.NoError(t, c.Review(context.Background(), gw))

	assert.Equal(t, 1, gw.callCount())
	assert.Empty(t, c.Snapshot().Advisory)
}

func TestConsole_GatewaySizeRejectionShowsAdvisory(t *testing.T) {
	gw := &mockGateway{err: fmt.Errorf("%w: 64 bytes, limit 16", application.ErrCodeTooLarge)}
	c := application.NewConsole(application.WithInitialCode("x := 1"))

	err := c.Review(context.Background(), gw)

	require.ErrorIs(t, err, model.ErrCodeTooLarge)
	view := c.Snapshot()
	assert.Equal(t, model.RequestStateSettled, view.State)
	assert.Nil(t, view.Result, "a size rejection is not an API error review")
	assert.Equal(t, application.CodeTooLargeAdvisory, view.Advisory)
}

func TestConsole_SuccessfulReview(t *testing.T) {
	gw := &mockGateway{result: model.ReviewResult{Summary: "Looks fine", Issues: []model.Issue{}}}
	c := application.NewConsole(application.WithInitialCode("function add(a,b){return a+b}"))

	err := c.Review(context.Background(), gw)

	require.NoError(t, err)
	view := c.Snapshot()
	assert.Equal(t, model.RequestStateSettled, view.State)
	require.NotNil(t, view.Result)
	assert.Equal(t, "Looks fine", view.Result.Summary)
	assert.Empty(t, view.Result.Issues)
	assert.False(t, view.Result.HasRefactor())
	assert.Empty(t, view.Advisory)
}

func TestConsole_IssuesKeepOrderAndSeverity(t *testing.T) {
	issues := []model.Issue{
		{Severity: model.SeverityCritical, Title: "SQL injection"},
		{Severity: model.SeverityInfo, Title: "Naming"},
		{Severity: model.SeverityWarning, Title: "Unused import"},
	}
	gw := &mockGateway{result: model.ReviewResult{Summary: "s", Issues: issues}}
	c := application.NewConsole(application.WithInitialCode("x"))

	require.NoError(t, c.Review(context.Background(), gw))

	assert.Equal(t, issues, c.Snapshot().Result.Issues)
}

func TestConsole_GatewayFailureSynthesizesCriticalIssue(t *testing.T) {
	gw := &mockGateway{err: errors.New("network down")}
	c := application.NewConsole(application.WithInitialCode("x := 1"))

	err := c.Review(context.Background(), gw)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "network down")
	view := c.Snapshot()
	assert.Equal(t, model.RequestStateSettled, view.State)
	require.NotNil(t, view.Result)
	assert.Equal(t, application.ReviewErrorSummary, view.Result.Summary)
	require.Len(t, view.Result.Issues, 1)
	assert.Equal(t, model.SeverityCritical, view.Result.Issues[0].Severity)
	assert.Equal(t, "API Error", view.Result.Issues[0].Title)
	assert.Empty(t, view.Result.RefactoredCode)
}

func TestConsole_NewReviewDiscardsPreviousResultImmediately(t *testing.T) {
	c := application.NewConsole(application.WithInitialCode("x := 1"))
	first := &mockGateway{result: model.ReviewResult{Summary: "first", RefactoredCode: "y := 1"}}
	require.NoError(t, c.Review(context.Background(), first))

	second := &mockGateway{
		result:  model.ReviewResult{Summary: "second"},
		release: make(chan struct{}),
		started: make(chan struct{}),
	}
	done := make(chan error, 1)
	go func() { done <- c.Review(context.Background(), second) }()

	<-second.started
	view := c.Snapshot()
	assert.True(t, view.Loading())
	assert.Nil(t, view.Result, "previous review must be cleared while loading")

	close(second.release)
	require.NoError(t, <-done)
	assert.Equal(t, "second", c.Snapshot().Result.Summary)
}

func TestConsole_CompleteWithoutStart(t *testing.T) {
	c := application.NewConsole()

	err := c.Complete(model.ReviewResult{Summary: "stray"}, nil)

	require.ErrorIs(t, err, application.ErrNoReviewInFlight)
	assert.Nil(t, c.Snapshot().Result)
}

func TestConsole_BufferEditableWhileLoading(t *testing.T) {
	c := application.NewConsole(application.WithInitialCode("a"))
	code, _, err := c.StartReview()
	require.NoError(t, err)

	c.SetCode("b")

	assert.Equal(t, "a", code)
	assert.Equal(t, "b", c.Code())
}

func TestConsole_CopyAcknowledgmentsAreIndependent(t *testing.T) {
	clock := &fakeClock{now: consoleTestTime}
	c := application.NewConsole(application.WithInitialCode("orig"), application.WithClock(clock.Now))
	require.NoError(t, c.Review(context.Background(), &mockGateway{result: model.ReviewResult{Summary: "s", RefactoredCode: "refactored"}}))
	cb := &mockClipboard{}

	require.NoError(t, c.Copy(context.Background(), cb, model.CopyTargetOriginal))

	assert.True(t, c.Copied(model.CopyTargetOriginal))
	assert.False(t, c.Copied(model.CopyTargetRefactored))

	clock.Advance(time.Second)
	require.NoError(t, c.Copy(context.Background(), cb, model.CopyTargetRefactored))

	view := c.Snapshot()
	assert.True(t, view.CopiedOriginal)
	assert.True(t, view.CopiedRefactored)

	clock.Advance(time.Second)
	assert.False(t, c.Copied(model.CopyTargetOriginal), "original ack expires after 2s")
	assert.True(t, c.Copied(model.CopyTargetRefactored))

	clock.Advance(time.Second)
	assert.False(t, c.Copied(model.CopyTargetRefactored))

	assert.Equal(t, []string{"orig", "refactored"}, cb.texts)
}

func TestConsole_CopyRefactoredWithoutRefactor(t *testing.T) {
	c := application.NewConsole()
	cb := &mockClipboard{}

	err := c.Copy(context.Background(), cb, model.CopyTargetRefactored)

	require.ErrorIs(t, err, application.ErrNothingToCopy)
	assert.Empty(t, cb.texts)
}

func TestConsole_CopyRefactoredNotAcknowledgedWhenReviewRestarts(t *testing.T) {
	c := application.NewConsole(application.WithInitialCode("x := 1"))
	require.NoError(t, c.Review(context.Background(), &mockGateway{result: model.ReviewResult{Summary: "s", RefactoredCode: "y := 2"}}))
	cb := &mockClipboard{during: func() {
		_, _, err := c.StartReview()
		require.NoError(t, err)
	}}

	err := c.Copy(context.Background(), cb, model.CopyTargetRefactored)

	require.ErrorIs(t, err, application.ErrNothingToCopy)
	assert.False(t, c.Copied(model.CopyTargetRefactored))
	assert.True(t, c.Snapshot().Loading())
}

func TestConsole_CopyOriginalSurvivesReviewRestart(t *testing.T) {
	c := application.NewConsole(application.WithInitialCode("x := 1"))
	cb := &mockClipboard{during: func() {
		_, _, err := c.StartReview()
		require.NoError(t, err)
	}}

	require.NoError(t, c.Copy(context.Background(), cb, model.CopyTargetOriginal))

	assert.True(t, c.Copied(model.CopyTargetOriginal))
}

func TestConsole_CopyErrors(t *testing.T) {
	c := application.NewConsole()

	require.ErrorIs(t, c.Copy(context.Background(), nil, model.CopyTargetOriginal), application.ErrNoClipboard)

	failing := &mockClipboard{err: errors.New("denied")}
	err := c.Copy(context.Background(), failing, model.CopyTargetOriginal)
	require.Error(t, err)
	assert.False(t, c.Copied(model.CopyTargetOriginal), "failed copy must not acknowledge")

	err = c.Copy(context.Background(), &mockClipboard{}, model.CopyTarget("bogus"))
	require.Error(t, err)
}

func TestConsole_SnapshotIsDetached(t *testing.T) {
	c := application.NewConsole(application.WithInitialCode("x"))
	require.NoError(t, c.Review(context.Background(), &mockGateway{result: model.ReviewResult{
		Summary: "s",
		Issues:  []model.Issue{{Severity: model.SeverityInfo, Title: "t"}},
	}}))

	view := c.Snapshot()
	view.Result.Issues[0].Title = "mutated"

	assert.Equal(t, "t", c.Snapshot().Result.Issues[0].Title)
}
