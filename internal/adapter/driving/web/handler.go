// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/aireviewer/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/aireviewer/internal/application"
	"github.com/ericfisherdev/aireviewer/internal/domain/model"
	"github.com/ericfisherdev/aireviewer/internal/domain/port/driven"
)

const pageTitle = "AI Code Reviewer"

// formOverhead covers the form fields around the code buffer.
const formOverhead = 4096

// Handler is the web GUI driving adapter that serves the review console.
// Each browser session gets its own console from the registry.
type Handler struct {
	consoles     *application.ConsoleRegistry
	gateway      driven.ReviewGateway
	maxFormBytes int64
	logger       *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. Form bodies
// are capped at what a URL-encoded buffer of maxCodeBytes can take, so an
// oversized buffer still reaches the console and gets its size advisory.
// maxCodeBytes <= 0 leaves the net/http form limit in charge.
func NewHandler(consoles *application.ConsoleRegistry, gateway driven.ReviewGateway, maxCodeBytes int64, logger *slog.Logger) *Handler {
	var maxFormBytes int64
	if maxCodeBytes > 0 {
		maxFormBytes = 3*maxCodeBytes + formOverhead
	}
	return &Handler{
		consoles:     consoles,
		gateway:      gateway,
		maxFormBytes: maxFormBytes,
		logger:       logger,
	}
}

// Console renders the console page with the full HTML layout.
func (h *Handler) Console(w http.ResponseWriter, r *http.Request) {
	csrfToken(w, r)
	c := h.consoles.Get(sessionID(w, r))

	page := templates.ConsolePage(toConsoleViewModel(c.Snapshot()))
	h.render(w, r, http.StatusOK, templates.Layout(pageTitle, page))
}

// ReviewPanel renders the results pane fragment. A loading pane polls this.
func (h *Handler) ReviewPanel(w http.ResponseWriter, r *http.Request) {
	c := h.consoles.Get(sessionID(w, r))
	h.render(w, r, http.StatusOK, templates.ReviewPanel(toReviewPanelViewModel(c.Snapshot())))
}

// UpdateCode stores the edited buffer.
func (h *Handler) UpdateCode(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	if !r.PostForm.Has("code") {
		http.Error(w, "code is required", http.StatusBadRequest)
		return
	}

	h.consoles.Get(sessionID(w, r)).SetCode(r.PostForm.Get("code"))
	w.WriteHeader(http.StatusNoContent)
}

// Review runs a review of the submitted buffer and returns the settled
// results pane. A submit while the session's review is outstanding gets 409.
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	c := h.consoles.Get(sessionID(w, r))
	if r.PostForm.Has("code") {
		c.SetCode(r.PostForm.Get("code"))
	}

	if err := c.Review(r.Context(), h.gateway); err != nil {
		if errors.Is(err, application.ErrReviewInFlight) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		// The console has settled on an advisory or the failure review; render it.
		h.logger.WarnContext(r.Context(), "console review failed", "error", err)
	}

	h.render(w, r, http.StatusOK, templates.ReviewPanel(toReviewPanelViewModel(c.Snapshot())))
}

// Copy records a copy the browser has made and returns the acknowledged
// copy button. The browser writes the clipboard itself in the click handler
// and posts here once the write succeeded.
func (h *Handler) Copy(w http.ResponseWriter, r *http.Request) {
	target, ok := model.ParseCopyTarget(r.PathValue("target"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	if !h.parseForm(w, r) {
		return
	}

	c := h.consoles.Get(sessionID(w, r))
	if target == model.CopyTargetOriginal && r.PostForm.Has("code") {
		c.SetCode(r.PostForm.Get("code"))
	}

	cb := &browserClipboard{}
	if err := c.Copy(r.Context(), cb, target); err != nil {
		if errors.Is(err, application.ErrNothingToCopy) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		h.logger.ErrorContext(r.Context(), "copy failed", "target", target, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	h.logger.DebugContext(r.Context(), "copy acknowledged", "target", target, "bytes", cb.copied)

	h.render(w, r, http.StatusOK, templates.CopyButton(toCopyButtonViewModel(target, c.Copied(target))))
}

// CopyButton renders a copy button in its current acknowledgment state.
func (h *Handler) CopyButton(w http.ResponseWriter, r *http.Request) {
	target, ok := model.ParseCopyTarget(r.PathValue("target"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	c := h.consoles.Get(sessionID(w, r))
	h.render(w, r, http.StatusOK, templates.CopyButton(toCopyButtonViewModel(target, c.Copied(target))))
}

// HighlightStylesheet serves the syntax highlighting classes.
func (h *Handler) HighlightStylesheet(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(HighlightCSS())
}

// limitBody caps the request body before anything reads the form.
func (h *Handler) limitBody(next http.HandlerFunc) http.HandlerFunc {
	if h.maxFormBytes <= 0 {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxFormBytes)
		next(w, r)
	}
}

// parseForm parses the POST form. It writes the error response and returns
// false when the form cannot be used.
func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	err := r.ParseForm()
	if err == nil {
		return true
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		http.Error(w, model.ErrCodeTooLarge.Error(), http.StatusRequestEntityTooLarge)
		return false
	}
	http.Error(w, "invalid form", http.StatusBadRequest)
	return false
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := component.Render(r.Context(), w); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render component", "path", r.URL.Path, "error", err)
	}
}
