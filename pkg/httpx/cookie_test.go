package httpx

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRefreshCookie(t *testing.T) {
	t.Parallel()

	cfg := CookieConfig{
		Name:     "refresh_token",
		Path:     "/v1/auth/refresh",
		Secure:   true,
		SameSite: "Strict",
	}

	now := time.Now()
	c := cfg.RefreshCookie("raw-secret", now.Add(time.Hour), now)

	require.Equal(t, "refresh_token", c.Name)
	require.Equal(t, "raw-secret", c.Value)
	require.Equal(t, "/v1/auth/refresh", c.Path)
	require.True(t, c.HttpOnly)
	require.True(t, c.Secure)
	require.Equal(t, http.SameSiteStrictMode, c.SameSite)
	require.Equal(t, 3600, c.MaxAge)
}

func TestRefreshCookieMaxAgeFloorsAtZero(t *testing.T) {
	t.Parallel()

	cfg := CookieConfig{Name: "refresh_token", Path: "/v1/auth/refresh"}

	// The wire format is what matters: MaxAge == 0 would make net/http
	// omit the attribute entirely, leaving a session cookie holding the
	// secret.
	now := time.Now()
	c := cfg.RefreshCookie("raw-secret", now.Add(-time.Hour), now)
	require.Contains(t, c.String(), "Max-Age=0",
		"expired token yields an immediately-expiring cookie")
}

func TestClearCookie(t *testing.T) {
	t.Parallel()

	cfg := CookieConfig{Name: "refresh_token", Path: "/v1/auth/refresh", SameSite: "None"}

	c := cfg.ClearCookie()
	require.Empty(t, c.Value)
	require.Contains(t, c.String(), "Max-Age=0")
	require.True(t, c.HttpOnly)
	require.Equal(t, http.SameSiteNoneMode, c.SameSite)
}

func TestParseSameSiteDefaultsToLax(t *testing.T) {
	t.Parallel()

	require.Equal(t, http.SameSiteLaxMode, parseSameSite(""))
	require.Equal(t, http.SameSiteLaxMode, parseSameSite("bogus"))
	require.Equal(t, http.SameSiteStrictMode, parseSameSite("strict"))
}
