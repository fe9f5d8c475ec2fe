package httpx

import (
	"net/http"
	"strings"
	"time"
)

// CookieConfig carries the transport policy for the refresh-token cookie.
type CookieConfig struct {
	Name     string // cookie name, e.g. "refresh_token"
	Path     string // scoped to the refresh endpoint only
	Secure   bool   // false for dev HTTP, true behind HTTPS
	SameSite string // "Lax", "Strict" or "None"
}

// RefreshCookie builds the HTTP-only cookie carrying the raw refresh secret.
// Max-Age floors at zero on the wire: an already-expired token yields a
// cookie the browser drops immediately rather than an error. net/http omits
// the attribute for MaxAge == 0 and serializes any negative value as
// "Max-Age=0", so the floor must be below zero.
func (c CookieConfig) RefreshCookie(value string, expiresAt, now time.Time) *http.Cookie {
	maxAge := int(expiresAt.Sub(now).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}

	return &http.Cookie{
		Name:     c.Name,
		Value:    value,
		Path:     c.Path,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: parseSameSite(c.SameSite),
	}
}

// ClearCookie builds the expired empty cookie that removes the refresh
// secret from the client.
func (c CookieConfig) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     c.Path,
		MaxAge:   -1, // serialized as Max-Age=0
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: parseSameSite(c.SameSite),
	}
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
