package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/dropwishes/api/internal/api/response"
	"github.com/dropwishes/api/internal/storage"
)

// Media serves uploaded files from whichever store is configured, so URLs
// stay stable when the backend moves between disk and S3.
type Media struct {
	store storage.Store
}

func NewMedia(store storage.Store) *Media {
	return &Media{store: store}
}

func (h *Media) Serve(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if !storage.ValidKey(key) {
		response.WriteError(w, http.StatusNotFound, "not found")
		return
	}

	rc, err := h.store.Open(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			response.WriteError(w, http.StatusNotFound, "not found")
			return
		}
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rc.Close()

	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	io.Copy(w, rc)
}
