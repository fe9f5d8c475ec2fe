package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/YassineIdiri/expense-tracker/internal/service"
	"github.com/YassineIdiri/expense-tracker/pkg/httpx"
	"github.com/YassineIdiri/expense-tracker/pkg/slogx"
)

// PasswordHandler serves the authenticated password change endpoint and the
// anonymous reset flow.
type PasswordHandler struct {
	Sessions *service.SessionService
	Resets   *service.PasswordResetService
	Cookie   httpx.CookieConfig
}

func (h *PasswordHandler) HandleChange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := httpx.IdentityFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "authentication required")
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	err := h.Sessions.ChangePassword(ctx, id.UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "current password is incorrect")
		case errors.Is(err, service.ErrWeakPassword):
			httpx.WriteError(w, http.StatusBadRequest, "weak_password", "password does not meet the minimum requirements")
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "account no longer exists")
		default:
			slogx.FromContext(ctx).Error("change password failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		}
		return
	}

	// Every session died with the old password, this device included.
	http.SetCookie(w, h.Cookie.ClearCookie())
	w.WriteHeader(http.StatusNoContent)
}

func (h *PasswordHandler) HandleResetRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email is required")
		return
	}

	if err := h.Resets.Request(ctx, req.Email); err != nil {
		slogx.FromContext(ctx).Error("password reset request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		return
	}

	// Accepted regardless of whether the address has an account.
	w.WriteHeader(http.StatusAccepted)
}

func (h *PasswordHandler) HandleResetComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "token is required")
		return
	}

	err := h.Resets.Complete(ctx, req.Token, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrTokenExpired):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "reset token is invalid or expired")
		case errors.Is(err, service.ErrWeakPassword):
			httpx.WriteError(w, http.StatusBadRequest, "weak_password", "password does not meet the minimum requirements")
		default:
			slogx.FromContext(ctx).Error("password reset failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
