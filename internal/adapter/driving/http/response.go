package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/ericfisherdev/aireviewer/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// ReviewRequest is the JSON body for the review endpoint. Code is a pointer
// so a missing field can be told apart from an empty one.
type ReviewRequest struct {
	Code *string `json:"code"`
}

// ReviewResponse is the JSON representation of a structured review.
type ReviewResponse struct {
	Summary        string          `json:"summary"`
	Issues         []IssueResponse `json:"issues"`
	RefactoredCode string          `json:"refactoredCode"`
}

// IssueResponse is the JSON representation of a single review issue.
type IssueResponse struct {
	Severity    string `json:"severity"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// toReviewResponse converts a domain ReviewResult to its JSON representation.
// Issues is always an array, never null.
func toReviewResponse(r model.ReviewResult) ReviewResponse {
	issues := make([]IssueResponse, 0, len(r.Issues))
	for _, is := range r.Issues {
		issues = append(issues, IssueResponse{
			Severity:    string(is.Severity),
			Title:       is.Title,
			Description: is.Description,
		})
	}

	return ReviewResponse{
		Summary:        r.Summary,
		Issues:         issues,
		RefactoredCode: r.RefactoredCode,
	}
}
