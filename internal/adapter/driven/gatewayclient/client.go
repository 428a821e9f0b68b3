// Package gatewayclient implements the ReviewGateway port over HTTP against a
// remote review gateway.
package gatewayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/aireviewer/internal/domain/model"
	"github.com/ericfisherdev/aireviewer/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ReviewGateway = (*Client)(nil)

// maxResponseBytes bounds how much of a gateway response is read.
const maxResponseBytes = 4 << 20

// APIError is a non-2xx response from the gateway.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("gateway returned status %d: %s", e.StatusCode, e.Message)
}

// Is reports a 413 response as model.ErrCodeTooLarge.
func (e *APIError) Is(target error) bool {
	return target == model.ErrCodeTooLarge && e.StatusCode == http.StatusRequestEntityTooLarge
}

// Client talks to the gateway's /ai/get-review endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the gateway at baseURL. A nil httpClient
// gets a client with a 2 minute timeout, long enough for slow models.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

type reviewRequest struct {
	Code string `json:"code"`
}

type reviewResponse struct {
	Summary        *string         `json:"summary"`
	Issues         []issueResponse `json:"issues"`
	RefactoredCode string          `json:"refactoredCode"`
}

type issueResponse struct {
	Severity    string `json:"severity"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// RequestReview posts code to the gateway and returns its review. Non-2xx
// responses are returned as *APIError; a 2xx body that is not a review is
// reported as model.ErrMalformedReview.
func (c *Client) RequestReview(ctx context.Context, code string) (model.ReviewResult, error) {
	payload, err := json.Marshal(reviewRequest{Code: code})
	if err != nil {
		return model.ReviewResult{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ai/get-review", bytes.NewReader(payload))
	if err != nil {
		return model.ReviewResult{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return model.ReviewResult{}, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return model.ReviewResult{}, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var er errorResponse
		if json.Unmarshal(body, &er) == nil {
			apiErr.Message = er.Error
		}
		return model.ReviewResult{}, apiErr
	}

	var rr reviewResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return model.ReviewResult{}, fmt.Errorf("%w: %w", model.ErrMalformedReview, err)
	}
	if rr.Summary == nil {
		return model.ReviewResult{}, fmt.Errorf("%w: missing summary", model.ErrMalformedReview)
	}

	issues := make([]model.Issue, 0, len(rr.Issues))
	for _, is := range rr.Issues {
		issues = append(issues, model.Issue{
			Severity:    model.NormalizeSeverity(is.Severity),
			Title:       is.Title,
			Description: is.Description,
		})
	}

	return model.ReviewResult{
		Summary:        *rr.Summary,
		Issues:         issues,
		RefactoredCode: rr.RefactoredCode,
	}, nil
}

// Health calls the gateway's liveness endpoint and returns its text.
func (c *Client) Health(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	return strings.TrimSpace(string(body)), nil
}

// IsAPIError reports whether err is an *APIError with the given status.
func IsAPIError(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
