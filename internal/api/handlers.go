package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/starford/perthro/internal/apperr"
	"github.com/starford/perthro/internal/archiveservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *archiveservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *archiveservice.Service) *Handler {
	return &Handler{svc: svc}
}

// wildcardParam extracts the trailing path parameter from the URL.
// Supports encoded slashes from OpenAPI clients (e.g. intake%2Farchive.env).
func wildcardParam(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListArchives handles GET /api/archives.
//
//	@Summary		List cataloged archives
//	@Tags			archives
//	@Produce		json
//	@Success		200	{object}	ArchiveListResponse
//	@Security		BearerAuth
//	@Router			/archives [get]
func (h *Handler) ListArchives(w http.ResponseWriter, r *http.Request) {
	archives, err := h.svc.ListArchives(r.Context())
	if err != nil {
		slog.Error("list archives failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"archives": archives,
		"total":    len(archives),
	})
}

// GetArchive handles GET /api/archives/*.
//
//	@Summary		Get one archive with its extracted records
//	@Tags			archives
//	@Produce		json
//	@Param			source	path		string	true	"Archive source path"
//	@Success		200		{object}	ArchiveDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/archives/{source} [get]
func (h *Handler) GetArchive(w http.ResponseWriter, r *http.Request) {
	source := wildcardParam(r)
	if source == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("source is required"))
		return
	}
	detail, err := h.svc.GetArchive(r.Context(), source)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get archive failed", slog.String("source", source), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// ReadRecord handles GET /api/records/*.
//
//	@Summary		Download the payload of an extracted record
//	@Tags			records
//	@Produce		octet-stream
//	@Param			name	path	string	true	"Extracted file name"
//	@Success		200		{file}	binary
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/records/{name} [get]
func (h *Handler) ReadRecord(w http.ResponseWriter, r *http.Request) {
	name := wildcardParam(r)
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	data, err := h.svc.ReadRecord(r.Context(), name)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("read record failed", slog.String("name", name), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("record write failed", slog.String("name", name), slog.String("error", err.Error()))
	}
}

// Search handles GET /api/search.
//
//	@Summary		Search extracted records by name, GUID or type
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

// Tags handles GET /api/tags.
//
//	@Summary		List tag tokens discovered across extractions
//	@Tags			tags
//	@Produce		json
//	@Success		200	{object}	map[string][]string
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	listing, err := h.svc.TagListing(r.Context())
	if err != nil {
		slog.Error("tag listing failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	tags := []string{}
	for _, line := range strings.Split(listing, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			tags = append(tags, line)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tags": tags,
	})
}
