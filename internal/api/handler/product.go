package handler

import (
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dropwishes/api/internal/api/request"
	"github.com/dropwishes/api/internal/api/response"
	"github.com/dropwishes/api/internal/core"
	"github.com/dropwishes/api/internal/storage"
)

// maxUploadBytes caps image uploads at 10 MiB.
const maxUploadBytes = 10 << 20

var allowedImageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

type Product struct {
	svc   *core.ProductService
	store storage.Store
}

func NewProduct(svc *core.ProductService, store storage.Store) *Product {
	return &Product{svc: svc, store: store}
}

// List returns the user's products, newest-named first. The assigned_only
// filter keeps only products attached to at least one wishlist.
func (h *Product) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	products, err := h.svc.List(r.Context(), user.ID, request.ParseBool(r, "assigned_only"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, products)
}

func (h *Product) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req request.ProductNested
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.svc.Create(r.Context(), user.ID, core.NewProductParams{
		Name:     req.Name,
		Priority: req.Priority,
		Price:    req.Price,
		Link:     req.Link,
		Notes:    req.Notes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, product)
}

func (h *Product) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.svc.GetByID(r.Context(), user.ID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, product)
}

// Update applies a partial update. Another user's product reads as absent,
// so the response is 404 rather than 403.
func (h *Product) Update(w http.ResponseWriter, r *http.Request) {
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
		Name     *string `json:"name" validate:"omitempty,max=255"`
		Priority *string `json:"priority" validate:"omitempty,oneof=HIGH MEDIUM LOW"`
		Price    *string `json:"price" validate:"omitempty,price"`
		Link     *string `json:"link" validate:"omitempty,url"`
		Notes    *string `json:"notes"`
	}
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.svc.Update(r.Context(), user.ID, id, core.UpdateProductParams{
		Name:     req.Name,
		Priority: req.Priority,
		Price:    req.Price,
		Link:     req.Link,
		Notes:    req.Notes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, product)
}

func (h *Product) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Delete(r.Context(), user.ID, id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadImage stores a multipart image and replaces any previous one.
func (h *Product) UploadImage(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.svc.GetByID(r.Context(), user.ID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	key, err := saveUploadedImage(w, r, h.store, "product")
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.SetImage(r.Context(), user.ID, id, key); err != nil {
		writeServiceError(w, err)
		return
	}

	// Best effort cleanup of the replaced image.
	if product.ImagePath != nil {
		_ = h.store.Delete(r.Context(), *product.ImagePath)
	}

	product.ImagePath = &key
	response.WriteJSON(w, http.StatusOK, product)
}

// saveUploadedImage reads the "image" part of a multipart form and writes
// it to the media store under the given category.
func saveUploadedImage(w http.ResponseWriter, r *http.Request, store storage.Store, category string) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", err
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return "", err
	}
	defer file.Close()

	ext := strings.ToLower(path.Ext(header.Filename))
	if !allowedImageExts[ext] {
		return "", &unsupportedImageError{ext: ext}
	}

	key := storage.ImageKey(category, header.Filename)
	contentType := header.Header.Get("Content-Type")
	if err := store.Save(r.Context(), key, file, contentType); err != nil {
		return "", err
	}
	return key, nil
}

type unsupportedImageError struct {
	ext string
}

func (e *unsupportedImageError) Error() string {
	return "unsupported image type " + e.ext
}
