package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/YassineIdiri/expense-tracker/internal/domain"
	"github.com/YassineIdiri/expense-tracker/internal/store"
)

type passwordResetsRepo struct {
	q querier
}

func (r *passwordResetsRepo) CreatePasswordReset(ctx context.Context, pr domain.PasswordReset) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO password_resets (id, user_id, token_hash, expires_at, used_at, created_at)
		VALUES (?, ?, ?, ?, NULL, ?)`,
		pr.ID, pr.UserID, pr.TokenHash, pr.ExpiresAt, pr.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *passwordResetsRepo) GetPasswordResetByHash(
	ctx context.Context,
	hash string,
) (domain.PasswordReset, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, user_id, token_hash, expires_at, used_at, created_at
		FROM password_resets WHERE token_hash = ?`, hash)

	var pr domain.PasswordReset
	var usedAt sql.NullTime
	err := row.Scan(&pr.ID, &pr.UserID, &pr.TokenHash, &pr.ExpiresAt, &usedAt, &pr.CreatedAt)
	if err != nil {
		return domain.PasswordReset{}, mapNotFound(err)
	}
	pr.UsedAt = mapNullTimePtr(usedAt)
	return pr, nil
}

// ConsumePasswordReset mirrors the refresh-token CAS: used_at IS NULL makes
// a reset token single-use under concurrency.
func (r *passwordResetsRepo) ConsumePasswordReset(ctx context.Context, id string, now time.Time) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE password_resets SET used_at = ?
		WHERE id = ? AND used_at IS NULL`,
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

func (r *passwordResetsRepo) DeleteStalePasswordResets(ctx context.Context, cutoff time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM password_resets WHERE expires_at < ?`, cutoff)
	return err
}
