package handler

import (
	"net/http"

	mw "github.com/dropwishes/api/internal/api/middleware"
	"github.com/dropwishes/api/internal/api/request"
	"github.com/dropwishes/api/internal/api/response"
	"github.com/dropwishes/api/internal/core"
)

type User struct {
	users *core.UserService
	auth  *core.AuthService
}

func NewUser(users *core.UserService, auth *core.AuthService) *User {
	return &User{users: users, auth: auth}
}

// Register creates a new account.
func (h *User) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email           string `json:"email" validate:"required,email"`
		ConfirmEmail    string `json:"confirm_email" validate:"required,email"`
		Password        string `json:"password" validate:"required"`
		ConfirmPassword string `json:"confirm_password" validate:"required"`
		FirstName       string `json:"first_name" validate:"required,max=255"`
		LastName        string `json:"last_name" validate:"max=255"`
		Gender          string `json:"gender" validate:"omitempty,oneof=M F N"`
		Birthday        string `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
	}
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if core.NormalizeEmail(req.Email) != core.NormalizeEmail(req.ConfirmEmail) {
		response.WriteError(w, http.StatusBadRequest, "email addresses do not match")
		return
	}
	if req.Password != req.ConfirmPassword {
		response.WriteError(w, http.StatusBadRequest, "passwords do not match")
		return
	}
	if err := core.ValidatePassword(req.Password); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	birthday, err := parseDate(req.Birthday)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, "invalid birthday")
		return
	}

	user, err := h.users.Create(r.Context(), core.NewUserParams{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Gender:    req.Gender,
		Birthday:  birthday,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, user)
}

// Token exchanges email and password for an auth token.
func (h *User) Token(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.auth.Authenticate(r.Context(), core.NormalizeEmail(req.Email), req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	key, err := h.auth.IssueToken(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteToken(w, http.StatusOK, key)
}

// Me returns the authenticated user's profile.
func (h *User) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	response.WriteJSON(w, http.StatusOK, user)
}

// UpdateMe applies a partial profile update. Email and password are managed
// through their own endpoints and are ignored here.
func (h *User) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		FirstName *string `json:"first_name" validate:"omitempty,max=255"`
		LastName  *string `json:"last_name" validate:"omitempty,max=255"`
		Gender    *string `json:"gender" validate:"omitempty,oneof=M F N"`
		Birthday  *string `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
	}
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	params := core.UpdateProfileParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Gender:    req.Gender,
	}
	if req.Birthday != nil {
		birthday, err := parseDate(*req.Birthday)
		if err != nil {
			response.WriteError(w, http.StatusBadRequest, "invalid birthday")
			return
		}
		params.Birthday = birthday
	}

	updated, err := h.users.UpdateProfile(r.Context(), user.ID, params)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, updated)
}

// ChangePassword sets a new password after checking the old one. All
// existing tokens are revoked and a fresh one is returned.
func (h *User) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		OldPassword  string `json:"old_password" validate:"required"`
		NewPassword1 string `json:"new_password1" validate:"required"`
		NewPassword2 string `json:"new_password2" validate:"required"`
	}
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if user.PasswordHash == nil || !core.VerifyPassword(req.OldPassword, *user.PasswordHash) {
		response.WriteError(w, http.StatusBadRequest, "old password is incorrect")
		return
	}
	if req.NewPassword1 != req.NewPassword2 {
		response.WriteError(w, http.StatusBadRequest, "passwords do not match")
		return
	}
	if err := core.ValidatePassword(req.NewPassword1); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.users.UpdatePassword(r.Context(), user.ID, req.NewPassword1); err != nil {
		writeServiceError(w, err)
		return
	}
	if err := h.auth.RevokeAllTokens(r.Context(), user.ID); err != nil {
		writeServiceError(w, err)
		return
	}

	key, err := h.auth.IssueToken(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteToken(w, http.StatusOK, key)
}

// ChangeEmail updates the login email after re-checking the password. The
// account drops back to unverified until the next OTP login.
func (h *User) ChangeEmail(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		NewEmail     string `json:"new_email" validate:"required,email"`
		ConfirmEmail string `json:"confirm_email" validate:"required,email"`
		Password     string `json:"password" validate:"required"`
	}
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if core.NormalizeEmail(req.NewEmail) != core.NormalizeEmail(req.ConfirmEmail) {
		response.WriteError(w, http.StatusBadRequest, "email addresses do not match")
		return
	}
	if user.PasswordHash == nil || !core.VerifyPassword(req.Password, *user.PasswordHash) {
		response.WriteError(w, http.StatusBadRequest, "password is incorrect")
		return
	}

	if err := h.users.UpdateEmail(r.Context(), user.ID, req.NewEmail); err != nil {
		writeServiceError(w, err)
		return
	}

	updated, err := h.users.GetByID(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, updated)
}

// DeleteUser deactivates the account and revokes its tokens.
func (h *User) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.users.SoftDelete(r.Context(), user.ID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Logout revokes the token the request authenticated with.
func (h *User) Logout(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}

	if err := h.auth.RevokeToken(r.Context(), mw.TokenKey(r.Context())); err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]string{"detail": "logged out"})
}
