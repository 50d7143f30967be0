package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropwishes/api/internal/api/request"
	"github.com/dropwishes/api/internal/api/response"
	"github.com/dropwishes/api/internal/core"
)

// Tag exposes read access to everyone and writes to staff. Tags come into
// existence through post payloads, so there is no create endpoint.
type Tag struct {
	svc *core.TagService
}

func NewTag(svc *core.TagService) *Tag {
	return &Tag{svc: svc}
}

func (h *Tag) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, tags)
}

func (h *Tag) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tag, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, tag)
}

func (h *Tag) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Name string `json:"name" validate:"required,max=100"`
	}
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tag, err := h.svc.Update(r.Context(), id, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, tag)
}

func (h *Tag) Delete(w http.ResponseWriter, r *http.Request) {
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
