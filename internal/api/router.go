package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/perthro/internal/archiveservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *archiveservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Archives.
	r.Get("/archives", h.ListArchives)
	r.Get("/archives/*", h.GetArchive)

	// Extracted record payloads.
	r.Get("/records/*", h.ReadRecord)

	// Search.
	r.Get("/search", h.Search)

	// Discovered tags.
	r.Get("/tags", h.Tags)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
