package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/YassineIdiri/expense-tracker/internal/domain"
	"github.com/YassineIdiri/expense-tracker/internal/mail"
	"github.com/YassineIdiri/expense-tracker/internal/store"
	"github.com/YassineIdiri/expense-tracker/pkg/cryptox"
	"github.com/YassineIdiri/expense-tracker/pkg/idx"
	"github.com/YassineIdiri/expense-tracker/pkg/slogx"
)

// DefaultResetTTL bounds how long a password reset link stays valid.
const DefaultResetTTL = 30 * time.Minute

// PasswordResetService issues single-use reset tokens by email and redeems
// them for a new password.
type PasswordResetService struct {
	Store    store.Store
	Mailer   mail.Mailer
	ResetTTL time.Duration

	// BaseURL is the public address the reset link points at.
	BaseURL string
}

// Request starts a reset for the given email. It always reports success to
// the caller so the endpoint cannot be used to probe which addresses have
// accounts. The actual outcome only shows up in the logs.
func (s *PasswordResetService) Request(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)
	email = NormalizeEmail(email)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("password reset requested for unknown email")
			return nil
		}
		return err
	}

	raw, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	reset := domain.PasswordReset{
		ID:        idx.New().String(),
		UserID:    user.ID,
		TokenHash: cryptox.FingerprintToken(raw),
		ExpiresAt: now.Add(s.ttl()),
		CreatedAt: now,
	}
	if err := s.Store.PasswordResets().CreatePasswordReset(ctx, reset); err != nil {
		return err
	}

	body := fmt.Sprintf(
		"A password reset was requested for your account.\n\n"+
			"Reset link: %s/reset-password?token=%s\n\n"+
			"The link expires in %s. If you did not request this, ignore this message.",
		s.BaseURL, raw, s.ttl())

	if err := s.Mailer.Send(ctx, user.Email, "Password reset", body); err != nil {
		log.Error("failed to send password reset mail", "err", err, "user_id", user.ID)
		return nil
	}

	log.Info("password reset issued", "user_id", user.ID)
	return nil
}

// Complete redeems a reset token and sets the new password. The token is
// single use: the conditional consume update lets exactly one redemption
// through, and every session the user held is revoked.
func (s *PasswordResetService) Complete(ctx context.Context, rawToken, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	fp := cryptox.FingerprintToken(rawToken)

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		reset, err := tx.PasswordResets().GetPasswordResetByHash(ctx, fp)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidToken
			}
			return err
		}

		if reset.UsedAt != nil {
			return ErrInvalidToken
		}
		if !now.Before(reset.ExpiresAt) {
			return ErrTokenExpired
		}

		if err := tx.PasswordResets().ConsumePasswordReset(ctx, reset.ID, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidToken
			}
			return err
		}

		if err := tx.Users().UpdatePasswordHash(ctx, reset.UserID, hash); err != nil {
			return err
		}
		return tx.RefreshTokens().RevokeAllForUser(ctx, reset.UserID, now)
	})
}

func (s *PasswordResetService) ttl() time.Duration {
	if s.ResetTTL > 0 {
		return s.ResetTTL
	}
	return DefaultResetTTL
}
