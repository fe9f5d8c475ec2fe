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

// Default refresh token lifetimes. Remember-me widens the absolute window
// at issuance time only.
const (
	DefaultRefreshTTL    = 7 * 24 * time.Hour
	DefaultRememberMeTTL = 30 * 24 * time.Hour
)

// RefreshTokenService owns the refresh-token state machine: a record is
// Active until exactly one of rotation, revocation or expiry ends it, and
// no transition ever leaves a terminal state.
type RefreshTokenService struct {
	Store         store.Store
	RefreshTTL    time.Duration
	RememberMeTTL time.Duration

	// ExtendOnRotate makes rotation restart the absolute lifetime window
	// instead of inheriting the chain's original expiry. Off by default:
	// rotation refreshes the secret, not the session ceiling.
	ExtendOnRotate bool

	// RevokeFamilyOnReuse revokes the whole rotation family when an
	// already-consumed secret is replayed, on the assumption the chain is
	// compromised.
	RevokeFamilyOnReuse bool
}

// IssueResult carries the raw secret (shown to the client exactly once) and
// the chosen absolute expiry.
type IssueResult struct {
	Raw       string
	ExpiresAt time.Time
	FamilyID  string
}

// RotationResult is the outcome of a successful verify-and-rotate.
type RotationResult struct {
	UserID    string
	NewRaw    string
	ExpiresAt time.Time
}

// Issue creates a fresh Active refresh token for the user, starting a new
// rotation family.
func (s *RefreshTokenService) Issue(ctx context.Context, userID string, rememberMe bool) (IssueResult, error) {
	now := time.Now().UTC()

	raw, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return IssueResult{}, err
	}

	rt := domain.RefreshToken{
		ID:         idx.New().String(),
		UserID:     userID,
		TokenHash:  cryptox.FingerprintToken(raw),
		FamilyID:   idx.New().String(),
		RememberMe: rememberMe,
		ExpiresAt:  now.Add(s.ttlFor(rememberMe)),
		CreatedAt:  now,
	}

	if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
		return IssueResult{}, err
	}

	return IssueResult{Raw: raw, ExpiresAt: rt.ExpiresAt, FamilyID: rt.FamilyID}, nil
}

// VerifyAndRotate consumes the presented secret and issues its successor in
// one transaction. Two concurrent calls with the same secret cannot both
// succeed: the conditional consume update picks exactly one winner, the
// loser gets ErrTokenReused.
//
// Replay of an already-consumed secret is the classic stolen-token signal;
// it is logged distinctly and, when RevokeFamilyOnReuse is set, takes the
// whole chain down with it.
func (s *RefreshTokenService) VerifyAndRotate(ctx context.Context, raw string) (RotationResult, error) {
	now := time.Now().UTC()
	log := slogx.FromContext(ctx)
	fp := cryptox.FingerprintToken(raw)

	var result RotationResult

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		rt, err := tx.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidToken
			}
			return err
		}

		if rt.RevokedAt != nil {
			log.Warn("refresh token reuse detected",
				"user_id", rt.UserID,
				"family_id", rt.FamilyID,
				"revoked_at", rt.RevokedAt,
			)
			if s.RevokeFamilyOnReuse {
				if err := tx.RefreshTokens().RevokeFamily(ctx, rt.FamilyID, now); err != nil {
					return err
				}
			}
			return ErrTokenReused
		}

		if !now.Before(rt.ExpiresAt) {
			return ErrTokenExpired
		}

		// CAS: only one concurrent rotation of this record gets past here.
		if err := tx.RefreshTokens().ConsumeRefreshToken(ctx, rt.ID, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrTokenReused
			}
			return err
		}

		newRaw, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return err
		}

		expiresAt := rt.ExpiresAt
		if s.ExtendOnRotate {
			expiresAt = now.Add(s.ttlFor(rt.RememberMe))
		}

		successor := domain.RefreshToken{
			ID:         idx.New().String(),
			UserID:     rt.UserID,
			TokenHash:  cryptox.FingerprintToken(newRaw),
			FamilyID:   rt.FamilyID,
			RememberMe: rt.RememberMe,
			ExpiresAt:  expiresAt,
			CreatedAt:  now,
		}
		if err := tx.RefreshTokens().CreateRefreshToken(ctx, successor); err != nil {
			return err
		}

		result = RotationResult{
			UserID:    rt.UserID,
			NewRaw:    newRaw,
			ExpiresAt: successor.ExpiresAt,
		}
		return nil
	})
	if err != nil {
		return RotationResult{}, err
	}

	return result, nil
}

// Revoke marks the matching record revoked if it is still active. Unknown
// or already-revoked secrets are a no-op: logout is idempotent.
func (s *RefreshTokenService) Revoke(ctx context.Context, raw string) error {
	return s.Store.RefreshTokens().RevokeRefreshToken(
		ctx, cryptox.FingerprintToken(raw), time.Now().UTC())
}

// RevokeAllForUser revokes every active refresh token the user owns in one
// statement. After it returns no pre-existing secret verifies.
func (s *RefreshTokenService) RevokeAllForUser(ctx context.Context, userID string) error {
	return s.Store.RefreshTokens().RevokeAllForUser(ctx, userID, time.Now().UTC())
}

func (s *RefreshTokenService) ttlFor(rememberMe bool) time.Duration {
	if rememberMe {
		if s.RememberMeTTL > 0 {
			return s.RememberMeTTL
		}
		return DefaultRememberMeTTL
	}
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return DefaultRefreshTTL
}
