package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropwishes/api/internal/api/request"
	"github.com/dropwishes/api/internal/api/response"
	"github.com/dropwishes/api/internal/core"
)

type Wishlist struct {
	svc *core.WishlistService
}

func NewWishlist(svc *core.WishlistService) *Wishlist {
	return &Wishlist{svc: svc}
}

// List returns the user's wishlists, optionally narrowed to those holding
// any of the products in the ?products=1,2 filter.
func (h *Wishlist) List(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	lists, err := h.svc.List(r.Context(), user.ID, request.ParseIDList(r, "products"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, lists)
}

// Create inserts a wishlist together with its nested products. Products the
// user already owns with the same name and price are attached, not cloned.
func (h *Wishlist) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Title        string                  `json:"title" validate:"required,max=255"`
		Description  string                  `json:"description"`
		OccasionDate string                  `json:"occasion_date" validate:"omitempty,datetime=2006-01-02"`
		Address      string                  `json:"address"`
		Products     []request.ProductNested `json:"products" validate:"omitempty,dive"`
	}
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	occasionDate, err := parseDate(req.OccasionDate)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, "occasion_date must be YYYY-MM-DD")
		return
	}

	list, err := h.svc.Create(r.Context(), user.ID, core.NewWishlistParams{
		Title:        req.Title,
		Description:  req.Description,
		OccasionDate: occasionDate,
		Address:      req.Address,
		Products:     nestedProducts(req.Products),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, list)
}

func (h *Wishlist) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.svc.GetByID(r.Context(), user.ID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, list)
}

// Update applies a partial update. A products array in the payload replaces
// the attachment set; omitting it leaves attachments alone.
func (h *Wishlist) Update(w http.ResponseWriter, r *http.Request) {
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
		Title        *string                  `json:"title" validate:"omitempty,max=255"`
		Description  *string                  `json:"description"`
		OccasionDate *string                  `json:"occasion_date" validate:"omitempty,datetime=2006-01-02"`
		Address      *string                  `json:"address"`
		Products     *[]request.ProductNested `json:"products" validate:"omitempty,dive"`
	}
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	params := core.UpdateWishlistParams{
		Title:       req.Title,
		Description: req.Description,
		Address:     req.Address,
	}
	if req.OccasionDate != nil {
		occasionDate, err := parseDate(*req.OccasionDate)
		if err != nil {
			response.WriteError(w, http.StatusBadRequest, "occasion_date must be YYYY-MM-DD")
			return
		}
		params.OccasionDate = occasionDate
	}
	if req.Products != nil {
		products := nestedProducts(*req.Products)
		params.Products = &products
	}

	list, err := h.svc.Update(r.Context(), user.ID, id, params)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, list)
}

func (h *Wishlist) Delete(w http.ResponseWriter, r *http.Request) {
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

func nestedProducts(in []request.ProductNested) []core.NewProductParams {
	out := make([]core.NewProductParams, len(in))
	for i, p := range in {
		out[i] = core.NewProductParams{
			Name:     p.Name,
			Priority: p.Priority,
			Price:    p.Price,
			Link:     p.Link,
			Notes:    p.Notes,
		}
	}
	return out
}
