package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dropwishes/api/internal/api/request"
	"github.com/dropwishes/api/internal/api/response"
	"github.com/dropwishes/api/internal/core"
	"github.com/dropwishes/api/internal/mail"
)

type OTP struct {
	auth   *core.AuthService
	mailer mail.Mailer
	logger zerolog.Logger
}

func NewOTP(auth *core.AuthService, mailer mail.Mailer, logger zerolog.Logger) *OTP {
	return &OTP{auth: auth, mailer: mailer, logger: logger}
}

// Request emails a one-time login code. The response is 200 regardless of
// whether the email belongs to an account, so the endpoint cannot be used
// to probe for registered addresses.
func (h *OTP) Request(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, code, err := h.auth.CreateOTP(r.Context(), core.NormalizeEmail(req.Email))
	switch {
	case errors.Is(err, core.ErrNotFound):
		// Fall through to the generic response.
	case err != nil:
		writeServiceError(w, err)
		return
	default:
		body := fmt.Sprintf("Your DropWishes sign-in code is %s. It expires in 15 minutes.", code)
		if err := h.mailer.Send(user.Email, "Your sign-in code", body); err != nil {
			h.logger.Error().Err(err).Msg("failed to send OTP email")
		}
	}

	response.WriteJSON(w, http.StatusOK, map[string]string{
		"detail": "a login code has been sent if the address is registered",
	})
}

// Verify exchanges a valid code for an auth token and marks the account
// verified.
func (h *OTP) Verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email" validate:"required,email"`
		Code  string `json:"code" validate:"required,len=6,numeric"`
	}
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	key, err := h.auth.VerifyOTP(r.Context(), core.NormalizeEmail(req.Email), req.Code)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteToken(w, http.StatusOK, key)
}
