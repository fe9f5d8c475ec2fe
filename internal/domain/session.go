package domain

import "time"

// Session is what the orchestrator hands the transport layer after
// register/login/refresh: the access token for the response body and the
// refresh secret + expiry for the cookie.
type Session struct {
	AccessToken      string
	AccessTokenTTL   time.Duration
	RefreshToken     string // raw secret, shown to the client exactly once
	RefreshExpiresAt time.Time
}
