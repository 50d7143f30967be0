package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropwishes/api/internal/api/request"
	"github.com/dropwishes/api/internal/api/response"
	"github.com/dropwishes/api/internal/core"
)

type Comment struct {
	svc *core.CommentService
}

func NewComment(svc *core.CommentService) *Comment {
	return &Comment{svc: svc}
}

// List returns top-level comments with their replies nested.
func (h *Comment) List(w http.ResponseWriter, r *http.Request) {
	comments, err := h.svc.ListTopLevel(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, comments)
}

// Create posts a comment or a single-level staff reply. Replying to a reply,
// or adding a second reply to the same parent, is rejected.
func (h *Comment) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Post          string  `json:"post" validate:"required"`
		ParentComment *string `json:"parent_comment"`
		Body          string  `json:"body" validate:"required"`
	}
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ParentComment != nil && !user.IsStaff {
		response.WriteError(w, http.StatusForbidden, "only staff can reply to comments")
		return
	}

	comment, err := h.svc.Create(r.Context(), user.ID, core.NewCommentParams{
		PostID:          req.Post,
		ParentCommentID: req.ParentComment,
		Body:            req.Body,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, comment)
}

func (h *Comment) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, comment)
}

// Update edits the comment body. Only the author may edit.
func (h *Comment) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if comment.OwnerID != user.ID {
		response.WriteError(w, http.StatusForbidden, "only the author can modify a comment")
		return
	}

	var req struct {
		Body string `json:"body" validate:"required"`
	}
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.svc.Update(r.Context(), id, req.Body)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, updated)
}

// Delete removes the comment and its replies. Only the author may delete.
func (h *Comment) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if comment.OwnerID != user.ID {
		response.WriteError(w, http.StatusForbidden, "only the author can modify a comment")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
