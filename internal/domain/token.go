package domain

import "time"

// RefreshToken models the stored refresh token record. The raw secret is
// handed to the client exactly once; only its fingerprint is retained.
//
// A record moves through exactly one terminal transition:
// rotation and revocation both set RevokedAt, expiry is implicit via
// ExpiresAt. RevokedAt never resets to nil.
type RefreshToken struct {
	ID         string
	UserID     string
	TokenHash  string // base64url SHA-256 fingerprint of the raw secret
	FamilyID   string // stable across rotations of one session chain
	RememberMe bool
	ExpiresAt  time.Time
	RevokedAt  *time.Time
	CreatedAt  time.Time
}

// Active reports whether the record is still spendable at the given instant.
func (t RefreshToken) Active(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}

// PasswordReset models a single-use password reset token, stored hashed like
// refresh tokens.
type PasswordReset struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
