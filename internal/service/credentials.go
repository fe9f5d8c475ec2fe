package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/YassineIdiri/expense-tracker/internal/domain"
	"github.com/YassineIdiri/expense-tracker/internal/store"
	"github.com/YassineIdiri/expense-tracker/pkg/cryptox"
)

// MinPasswordLength is enforced at registration and password change.
const MinPasswordLength = 8

// CredentialVerifier checks email/password pairs against stored argon2id
// hashes.
type CredentialVerifier struct {
	Store store.Store
}

// NormalizeEmail canonicalizes an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Verify returns the matching user or ErrInvalidCredentials. Unknown email
// and wrong password are indistinguishable to the caller.
func (v *CredentialVerifier) Verify(ctx context.Context, email, password string) (domain.User, error) {
	user, err := v.Store.Users().GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn comparable time so the two failure paths are not
			// trivially distinguishable by latency.
			_ = cryptox.VerifyPassword(password, dummyHash())
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	return user, nil
}

// dummyHash lazily produces a throwaway argon2id hash verified on
// unknown-email lookups. Lazy so the pepper file is configured first.
var dummyHash = sync.OnceValue(func() string {
	h, err := cryptox.HashPassword("dummy-timing-equalizer")
	if err != nil {
		panic(err)
	}
	return h
})

// ValidatePassword rejects passwords below the minimum length.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}
