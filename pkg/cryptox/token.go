package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Token sizes in bytes before encoding.
const (
	// TokenSize256 provides 256 bits of entropy (43 chars base64url).
	// Recommended for refresh tokens and reset tokens.
	TokenSize256 = 32
	// TokenSize128 provides 128 bits of entropy (22 chars base64url).
	TokenSize128 = 16
)

// GenerateToken returns a cryptographically random, base64url-encoded opaque
// token of the given byte size.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// FingerprintToken returns the deterministic SHA-256 fingerprint of a token
// as base64url. Stores keep only the fingerprint: a database leak never
// yields usable secrets, and lookup by fingerprint stays an indexed equality.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
