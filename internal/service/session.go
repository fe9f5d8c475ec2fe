package service

import (
	"context"
	"errors"
	"time"

	"github.com/YassineIdiri/expense-tracker/internal/domain"
	"github.com/YassineIdiri/expense-tracker/internal/store"
	"github.com/YassineIdiri/expense-tracker/pkg/cryptox"
	"github.com/YassineIdiri/expense-tracker/pkg/idx"
	"github.com/YassineIdiri/expense-tracker/pkg/slogx"
)

// SessionService is the front door of the auth subsystem. It orchestrates
// the credential verifier, the access token codec and the refresh token
// state machine into the operations the HTTP layer exposes.
type SessionService struct {
	Store       store.Store
	Credentials *CredentialVerifier
	Access      *AccessTokenCodec
	Refresh     *RefreshTokenService
}

// Register creates a user and opens their first session.
func (s *SessionService) Register(ctx context.Context, email, password string, rememberMe bool) (domain.Session, error) {
	email = NormalizeEmail(email)
	if err := ValidatePassword(password); err != nil {
		return domain.Session{}, err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.Session{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Session{}, ErrEmailAlreadyUsed
		}
		return domain.Session{}, err
	}

	slogx.FromContext(ctx).Info("user registered", "user_id", user.ID)
	return s.open(ctx, user, rememberMe)
}

// Login verifies credentials and opens a session. Failure is always
// ErrInvalidCredentials, regardless of which check missed.
func (s *SessionService) Login(ctx context.Context, email, password string, rememberMe bool) (domain.Session, error) {
	user, err := s.Credentials.Verify(ctx, email, password)
	if err != nil {
		return domain.Session{}, err
	}
	return s.open(ctx, user, rememberMe)
}

// RefreshSession exchanges a valid refresh secret for a new access token and
// the rotated successor secret.
func (s *SessionService) RefreshSession(ctx context.Context, rawRefresh string) (domain.Session, error) {
	rotated, err := s.Refresh.VerifyAndRotate(ctx, rawRefresh)
	if err != nil {
		return domain.Session{}, err
	}

	user, err := s.Store.Users().GetUserByID(ctx, rotated.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, ErrInvalidToken
		}
		return domain.Session{}, err
	}

	access, err := s.Access.Issue(user.ID, user.Email)
	if err != nil {
		return domain.Session{}, err
	}

	return domain.Session{
		AccessToken:      access,
		AccessTokenTTL:   s.Access.AccessTTL,
		RefreshToken:     rotated.NewRaw,
		RefreshExpiresAt: rotated.ExpiresAt,
	}, nil
}

// Logout revokes the presented refresh secret. Idempotent: unknown or
// already-revoked secrets succeed silently.
func (s *SessionService) Logout(ctx context.Context, rawRefresh string) error {
	if rawRefresh == "" {
		return nil
	}
	return s.Refresh.Revoke(ctx, rawRefresh)
}

// LogoutEverywhere ends every session the user holds.
func (s *SessionService) LogoutEverywhere(ctx context.Context, userID string) error {
	return s.Refresh.RevokeAllForUser(ctx, userID)
}

// ChangePassword verifies the current password, stores the new hash and
// revokes every outstanding refresh token so stolen sessions die with the
// old password.
func (s *SessionService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if err := ValidatePassword(next); err != nil {
		return err
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := cryptox.VerifyPassword(current, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return ErrInvalidCredentials
		}
		return err
	}

	hash, err := cryptox.HashPassword(next)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
			return err
		}
		return tx.RefreshTokens().RevokeAllForUser(ctx, userID, now)
	})
}

// open issues the access/refresh pair for an authenticated user.
func (s *SessionService) open(ctx context.Context, user domain.User, rememberMe bool) (domain.Session, error) {
	access, err := s.Access.Issue(user.ID, user.Email)
	if err != nil {
		return domain.Session{}, err
	}

	issued, err := s.Refresh.Issue(ctx, user.ID, rememberMe)
	if err != nil {
		return domain.Session{}, err
	}

	return domain.Session{
		AccessToken:      access,
		AccessTokenTTL:   s.Access.AccessTTL,
		RefreshToken:     issued.Raw,
		RefreshExpiresAt: issued.ExpiresAt,
	}, nil
}
