package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// Web routes serve HTML at /app and /app/* paths.
// Static assets are served from the embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Static assets (embedded via go:embed).
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))
	mux.HandleFunc("GET /static/highlight.css", h.HighlightStylesheet)

	// Page routes.
	mux.HandleFunc("GET /app", h.Console)

	// Fragment routes (HTMX).
	mux.HandleFunc("GET /app/review", h.ReviewPanel)
	mux.HandleFunc("POST /app/review", h.limitBody(requireCSRF(h.Review)))
	mux.HandleFunc("POST /app/code", h.limitBody(requireCSRF(h.UpdateCode)))
	mux.HandleFunc("GET /app/copy/{target}", h.CopyButton)
	mux.HandleFunc("POST /app/copy/{target}", h.limitBody(requireCSRF(h.Copy)))
}
