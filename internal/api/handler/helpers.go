package handler

import (
	"errors"
	"net/http"
	"time"

	mw "github.com/dropwishes/api/internal/api/middleware"
	"github.com/dropwishes/api/internal/api/response"
	"github.com/dropwishes/api/internal/core"
	"github.com/dropwishes/api/internal/model"
)

const dateLayout = "2006-01-02"

// currentUser returns the authenticated user, writing a 401 if the request
// somehow reached a protected handler without one.
func currentUser(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	user := mw.CurrentUser(r.Context())
	if user == nil {
		response.WriteError(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	return user, true
}

// writeServiceError maps core errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		response.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrInvalidCredentials):
		response.WriteError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, core.ErrEmailTaken),
		errors.Is(err, core.ErrReplyToReply),
		errors.Is(err, core.ErrReplyExists):
		response.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		response.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

// parseDate parses an optional YYYY-MM-DD date string. Birthdays and
// wishlist occasion dates share the layout.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
