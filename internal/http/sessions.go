package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/YassineIdiri/expense-tracker/internal/domain"
	"github.com/YassineIdiri/expense-tracker/internal/service"
	"github.com/YassineIdiri/expense-tracker/pkg/httpx"
	"github.com/YassineIdiri/expense-tracker/pkg/slogx"
)

// TokenResponse is the JSON body returned by every endpoint that opens or
// refreshes a session. The refresh secret itself never appears here; it
// travels only in the HTTP-only cookie.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type credentialsRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

// SessionHandler serves the register/login/refresh/logout endpoints.
type SessionHandler struct {
	Sessions *service.SessionService
	Cookie   httpx.CookieConfig
}

func (h *SessionHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	// Registration always opens a short-lived session; remember-me is a
	// login-time choice.
	sess, err := h.Sessions.Register(ctx, req.Email, req.Password, false)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailAlreadyUsed):
			httpx.WriteError(w, http.StatusConflict, "email_already_used", "an account with this email already exists")
		case errors.Is(err, service.ErrWeakPassword):
			httpx.WriteError(w, http.StatusBadRequest, "weak_password", "password does not meet the minimum requirements")
		default:
			slogx.FromContext(ctx).Error("register failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		}
		return
	}

	h.writeSession(w, sess, http.StatusOK)
}

func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	sess, err := h.Sessions.Login(ctx, req.Email, req.Password, req.RememberMe)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
			return
		}
		slogx.FromContext(ctx).Error("login failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		return
	}

	h.writeSession(w, sess, http.StatusOK)
}

func (h *SessionHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw := h.refreshSecret(r)
	if raw == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "missing refresh token")
		return
	}

	sess, err := h.Sessions.RefreshSession(ctx, raw)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken),
			errors.Is(err, service.ErrTokenExpired),
			errors.Is(err, service.ErrTokenReused):
			// One answer for every bad-token flavour, and the dead cookie
			// goes away with it.
			http.SetCookie(w, h.Cookie.ClearCookie())
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "refresh token is invalid or expired")
		default:
			slogx.FromContext(ctx).Error("refresh failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		}
		return
	}

	h.writeSession(w, sess, http.StatusOK)
}

func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if raw := h.refreshSecret(r); raw != "" {
		if err := h.Sessions.Logout(ctx, raw); err != nil {
			slogx.FromContext(ctx).Error("logout failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
			return
		}
	}

	http.SetCookie(w, h.Cookie.ClearCookie())
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) HandleLogoutAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := httpx.IdentityFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "authentication required")
		return
	}

	if err := h.Sessions.LogoutEverywhere(ctx, id.UserID); err != nil {
		slogx.FromContext(ctx).Error("logout-all failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		return
	}

	http.SetCookie(w, h.Cookie.ClearCookie())
	w.WriteHeader(http.StatusNoContent)
}

// refreshSecret pulls the raw refresh secret off the request cookie.
func (h *SessionHandler) refreshSecret(r *http.Request) string {
	c, err := r.Cookie(h.Cookie.Name)
	if err != nil {
		return ""
	}
	return c.Value
}

func (h *SessionHandler) writeSession(w http.ResponseWriter, sess domain.Session, code int) {
	http.SetCookie(w, h.Cookie.RefreshCookie(sess.RefreshToken, sess.RefreshExpiresAt, time.Now()))
	httpx.WriteJSON(w, code, TokenResponse{
		AccessToken: sess.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(sess.AccessTokenTTL.Seconds()),
	})
}
