package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/YassineIdiri/expense-tracker/internal/service"
	"github.com/YassineIdiri/expense-tracker/internal/store"
	"github.com/YassineIdiri/expense-tracker/pkg/httpx"
	"github.com/YassineIdiri/expense-tracker/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store    store.Store
	Sessions *service.SessionService
	Resets   *service.PasswordResetService
	Cookie   httpx.CookieConfig
}

func NewRouter(
	st store.Store,
	logger *slog.Logger,
	buildVersion string,
	cookie httpx.CookieConfig,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		Cookie:       cookie,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSessions()
	r.registerPasswords()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSessions() {
	sessions := &SessionHandler{
		Sessions: r.Sessions,
		Cookie:   r.Cookie,
	}

	// Credential endpoints carry the strictest limit; refresh fires on
	// every access-token expiry so it gets a moderate one.
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(http.HandlerFunc(sessions.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		))
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(sessions.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		))
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(sessions.HandleRefresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		))
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(sessions.HandleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		))
	r.Mux.Handle("POST /v1/auth/logout-all",
		httpx.Chain(http.HandlerFunc(sessions.HandleLogoutAll),
			httpx.AuthnMiddleware(r.Sessions.Access),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		))
}

func (r *Router) registerPasswords() {
	passwords := &PasswordHandler{
		Sessions: r.Sessions,
		Resets:   r.Resets,
		Cookie:   r.Cookie,
	}

	r.Mux.Handle("POST /v1/auth/change-password",
		httpx.Chain(http.HandlerFunc(passwords.HandleChange),
			httpx.AuthnMiddleware(r.Sessions.Access),
			httpx.RateLimitByIP(httpx.StrictLimit),
		))
	r.Mux.Handle("POST /v1/auth/password-reset/request",
		httpx.Chain(http.HandlerFunc(passwords.HandleResetRequest),
			httpx.RateLimitByIP(httpx.StrictLimit),
		))
	r.Mux.Handle("POST /v1/auth/password-reset/complete",
		httpx.Chain(http.HandlerFunc(passwords.HandleResetComplete),
			httpx.RateLimitByIP(httpx.StrictLimit),
		))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		))
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		))
}
