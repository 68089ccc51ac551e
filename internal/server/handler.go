// Package server exposes language availability and the asset cache over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/at-ishikawa/toddlingo/internal/assetcache"
	"github.com/at-ishikawa/toddlingo/internal/content"
	"github.com/at-ishikawa/toddlingo/internal/language"
)

// Handler serves the JSON API and the object references minted by the cache.
type Handler struct {
	languages *language.Service
	pages     content.Repository
	cache     *assetcache.Cache
	logger    *slog.Logger
}

func NewHandler(languages *language.Service, pages content.Repository, cache *assetcache.Cache, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		languages: languages,
		pages:     pages,
		cache:     cache,
		logger:    logger,
	}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/languages", h.getLanguages)
	mux.HandleFunc("POST /api/books/{id}/prefetch", h.prefetchBook)
	mux.HandleFunc("GET /api/assets/{partition}", h.lookupAsset)
	mux.HandleFunc("DELETE /api/assets", h.clearAssets)
	mux.HandleFunc("GET /blob/{id}", h.openObject)
	mux.HandleFunc("DELETE /blob/{id}", h.revokeObject)
	return mux
}

func (h *Handler) getLanguages(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	collection := content.CollectionWords
	if name := params.Get("collection"); name != "" {
		parsed, err := content.ParseCollection(name)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
		collection = parsed
	}

	query := content.Query{
		Collection: collection,
		Field:      params.Get("field"),
	}
	if query.Field != "" {
		query.Value = params.Get("value")
	}
	if newest := params.Get("newest"); newest != "" {
		parsed, err := strconv.ParseBool(newest)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, fmt.Errorf("newest: %w", err))
			return
		}
		query.Newest = parsed
	}

	availability, err := h.languages.Availability(r.Context(), query)
	if err != nil {
		if errors.Is(err, content.ErrUnknownField) {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
		h.logger.Error("failed to load language availability", "collection", collection, "error", err)
		h.writeError(w, http.StatusInternalServerError, errors.New("failed to load language availability"))
		return
	}
	h.writeJSON(w, http.StatusOK, availability)
}

type prefetchResponse struct {
	BookID int64                     `json:"book_id"`
	Pages  int                       `json:"pages"`
	Result assetcache.PrefetchResult `json:"result"`
}

func (h *Handler) prefetchBook(w http.ResponseWriter, r *http.Request) {
	bookID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || bookID <= 0 {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid book id: %q", r.PathValue("id")))
		return
	}

	pages, err := h.pages.FindPages(r.Context(), bookID)
	if err != nil {
		h.logger.Error("failed to load book pages", "book_id", bookID, "error", err)
		h.writeError(w, http.StatusInternalServerError, errors.New("failed to load book pages"))
		return
	}

	result, err := h.cache.Prefetch(r.Context(), assetcache.PagesOf(pages), func(done, total int) {
		h.logger.Debug("prefetch progress", "book_id", bookID, "done", done, "total", total)
	})
	if err != nil {
		// the client went away; what was cached so far stays
		h.logger.Info("prefetch stopped", "book_id", bookID, "error", err)
		return
	}
	h.writeJSON(w, http.StatusOK, prefetchResponse{
		BookID: bookID,
		Pages:  len(pages),
		Result: result,
	})
}

type assetResponse struct {
	Ref string `json:"ref"`
}

func (h *Handler) lookupAsset(w http.ResponseWriter, r *http.Request) {
	partition, err := assetcache.ParsePartition(r.PathValue("partition"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	url := r.URL.Query().Get("url")
	if url == "" {
		h.writeError(w, http.StatusBadRequest, errors.New("url is required"))
		return
	}

	ref, ok := h.cache.Lookup(r.Context(), partition, url)
	if !ok {
		h.writeError(w, http.StatusNotFound, errors.New("not cached"))
		return
	}
	h.writeJSON(w, http.StatusOK, assetResponse{Ref: ref})
}

func (h *Handler) clearAssets(w http.ResponseWriter, r *http.Request) {
	if err := h.cache.Clear(r.Context()); err != nil {
		h.logger.Error("failed to clear the asset cache", "error", err)
		h.writeError(w, http.StatusInternalServerError, errors.New("failed to clear the asset cache"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) openObject(w http.ResponseWriter, r *http.Request) {
	object, ok := h.cache.Objects().Open(assetcache.ObjectRef(r.PathValue("id")))
	if !ok {
		h.writeError(w, http.StatusNotFound, errors.New("unknown object"))
		return
	}
	contentType := object.ContentType
	if strings.TrimSpace(contentType) == "" {
		contentType = http.DetectContentType(object.Data)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(object.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(object.Data)
}

func (h *Handler) revokeObject(w http.ResponseWriter, r *http.Request) {
	if !h.cache.Objects().Revoke(assetcache.ObjectRef(r.PathValue("id"))) {
		h.writeError(w, http.StatusNotFound, errors.New("unknown object"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("failed to write response", "error", err)
	}
}
