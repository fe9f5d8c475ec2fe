package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/YassineIdiri/expense-tracker/internal/domain"
	"github.com/YassineIdiri/expense-tracker/internal/store"
)

type refreshTokensRepo struct {
	q querier
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO refresh_tokens
			(id, user_id, token_hash, family_id, remember_me, expires_at, revoked_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, NULL, ?)`,
		t.ID, t.UserID, t.TokenHash, t.FamilyID, t.RememberMe, t.ExpiresAt, t.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(
	ctx context.Context,
	hash string,
) (domain.RefreshToken, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, user_id, token_hash, family_id, remember_me, expires_at, revoked_at, created_at
		FROM refresh_tokens WHERE token_hash = ?`, hash)

	var t domain.RefreshToken
	var revokedAt sql.NullTime
	err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.FamilyID,
		&t.RememberMe, &t.ExpiresAt, &revokedAt, &t.CreatedAt)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	t.RevokedAt = mapNullTimePtr(revokedAt)
	return t, nil
}

// ConsumeRefreshToken is the compare-and-swap at the heart of rotation:
// the revoked_at IS NULL guard makes exactly one concurrent caller win.
func (r *refreshTokensRepo) ConsumeRefreshToken(ctx context.Context, id string, now time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE refresh_tokens SET revoked_at = ?
		WHERE id = ? AND revoked_at IS NULL`,
		now, id,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, hash string, now time.Time) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE refresh_tokens SET revoked_at = ?
		WHERE token_hash = ? AND revoked_at IS NULL`,
		now, hash,
	)
	return err
}

func (r *refreshTokensRepo) RevokeAllForUser(ctx context.Context, userID string, now time.Time) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE refresh_tokens SET revoked_at = ?
		WHERE user_id = ? AND revoked_at IS NULL`,
		now, userID,
	)
	return err
}

func (r *refreshTokensRepo) RevokeFamily(ctx context.Context, familyID string, now time.Time) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE refresh_tokens SET revoked_at = ?
		WHERE family_id = ? AND revoked_at IS NULL`,
		now, familyID,
	)
	return err
}

func (r *refreshTokensRepo) DeleteStaleRefreshTokens(ctx context.Context, cutoff time.Time) error {
	_, err := r.q.ExecContext(ctx, `
		DELETE FROM refresh_tokens
		WHERE expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)`,
		cutoff, cutoff,
	)
	return err
}
