package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ericfisherdev/aireviewer/internal/application"
	"github.com/ericfisherdev/aireviewer/internal/domain/model"
)

// LivenessMessage is the body served at GET /.
const LivenessMessage = "AI Code Reviewer API Running ✅"

// jsonEnvelopeBytes is added to the body limit to leave room for the JSON
// object around the code string.
const jsonEnvelopeBytes = 4096

// Handler is the HTTP driving adapter that serves the review gateway API.
type Handler struct {
	reviewSvc *application.ReviewService
	logger    *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(reviewSvc *application.ReviewService, logger *slog.Logger) *Handler {
	return &Handler{
		reviewSvc: reviewSvc,
		logger:    logger,
	}
}

// RegisterAPIRoutes registers the gateway routes on the provided mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /{$}", h.Root)
	mux.HandleFunc("POST /ai/get-review", h.GetReview)
}

// NewServeMux creates an http.Handler with the gateway routes registered and
// wrapped with the standard middleware stack.
func NewServeMux(h *Handler, logger *slog.Logger, allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()
	RegisterAPIRoutes(mux, h)
	return ApplyMiddleware(mux, logger, allowedOrigins)
}

// Root is the liveness endpoint.
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, LivenessMessage)
}

// GetReview accepts {"code": "..."} and returns the provider's structured
// review. Clients that ask for the legacy plain-text form (?format=text or
// Accept: text/markdown) receive the review rendered as markdown instead.
func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request) {
	if limit := h.reviewSvc.MaxCodeBytes(); limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit*6+jsonEnvelopeBytes)
	}

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == nil {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	result, err := h.reviewSvc.Review(r.Context(), *req.Code)
	if err != nil {
		h.writeReviewError(w, r, err)
		return
	}

	if wantsLegacyText(r) {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Header().Set("Deprecation", "true")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, result.Markdown())
		return
	}

	writeJSON(w, http.StatusOK, toReviewResponse(result))
}

func (h *Handler) writeReviewError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, application.ErrBlankCode):
		writeError(w, http.StatusBadRequest, application.ErrBlankCode.Error())
	case errors.Is(err, application.ErrCodeTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, model.ErrMalformedReview):
		writeError(w, http.StatusBadGateway, model.ErrMalformedReview.Error())
	case errors.Is(err, application.ErrProviderUnavailable) && errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "review provider timed out")
	case errors.Is(err, application.ErrProviderUnavailable):
		writeError(w, http.StatusBadGateway, application.ErrProviderUnavailable.Error())
	default:
		h.logger.ErrorContext(r.Context(), "unexpected review error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// wantsLegacyText reports whether the caller selected the deprecated
// plain-text response.
func wantsLegacyText(r *http.Request) bool {
	if r.URL.Query().Get("format") == "text" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/markdown")
}
