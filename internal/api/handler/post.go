package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropwishes/api/internal/api/request"
	"github.com/dropwishes/api/internal/api/response"
	"github.com/dropwishes/api/internal/core"
	"github.com/dropwishes/api/internal/storage"
)

type Post struct {
	svc   *core.PostService
	store storage.Store
}

func NewPost(svc *core.PostService, store storage.Store) *Post {
	return &Post{svc: svc, store: store}
}

func (h *Post) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, posts)
}

// Create inserts a post with its tags. Tags the author doesn't own yet are
// created on the fly. The router restricts this to staff.
func (h *Post) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Title string   `json:"title" validate:"required,max=255"`
		Body  string   `json:"body" validate:"required"`
		Tags  []string `json:"tags" validate:"omitempty,dive,required,max=100"`
	}
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := h.svc.Create(r.Context(), user.ID, core.NewPostParams{
		Title: req.Title,
		Body:  req.Body,
		Tags:  req.Tags,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, post)
}

func (h *Post) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, post)
}

// Update applies a partial update. A tags array replaces the tag set.
func (h *Post) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Title *string   `json:"title" validate:"omitempty,max=255"`
		Body  *string   `json:"body"`
		Tags  *[]string `json:"tags" validate:"omitempty,dive,required,max=100"`
	}
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := h.svc.Update(r.Context(), user.ID, id, core.UpdatePostParams{
		Title: req.Title,
		Body:  req.Body,
		Tags:  req.Tags,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, post)
}

func (h *Post) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadImage stores a cover image for the post.
func (h *Post) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	key, err := saveUploadedImage(w, r, h.store, "blog")
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.SetImage(r.Context(), id, key); err != nil {
		writeServiceError(w, err)
		return
	}

	if post.ImagePath != nil {
		_ = h.store.Delete(r.Context(), *post.ImagePath)
	}

	post.ImagePath = &key
	response.WriteJSON(w, http.StatusOK, post)
}
