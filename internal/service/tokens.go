package service

import (
	"time"

	"github.com/YassineIdiri/expense-tracker/pkg/httpx"
	"github.com/YassineIdiri/expense-tracker/pkg/jwtx"
)

// AccessTokenCodec mints and verifies the short-lived, self-contained access
// tokens. Verification is purely cryptographic: no store lookup, no
// revocation. The refresh layer is the revocation point.
type AccessTokenCodec struct {
	Keypair   *jwtx.Keypair
	Issuer    string
	AccessTTL time.Duration
}

// Issue signs an access token for the given principal.
func (c *AccessTokenCodec) Issue(userID, email string) (string, error) {
	claims := jwtx.NewAccessClaims(userID, email, c.Issuer, c.AccessTTL, time.Now().UTC())
	return c.Keypair.Sign(claims)
}

// VerifyAccessToken validates the token and returns the principal. Every
// failure mode (malformed, bad signature, expired, wrong issuer) collapses
// to ErrInvalidToken so responses don't leak which check failed.
func (c *AccessTokenCodec) VerifyAccessToken(token string) (httpx.Identity, error) {
	claims, err := c.Keypair.Verify(token, c.Issuer)
	if err != nil {
		return httpx.Identity{}, ErrInvalidToken
	}
	return httpx.Identity{UserID: claims.Subject, Email: claims.Email}, nil
}
