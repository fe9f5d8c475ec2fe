package store

import (
	"context"
	"errors"
	"time"

	"github.com/YassineIdiri/expense-tracker/internal/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement it. Sub-repositories keep concerns tidy and testable.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens
	PasswordResets() PasswordResets

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing on nil and rolling
	// back on error. This is the recommended way to run multi-step writes
	// that must be atomic (refresh rotation, reset consumption).
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos plus Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts a new user (id is a ULID minted by the caller).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByEmail looks up by normalized email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// ExistsByEmail reports whether a user with the normalized email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the record for a secret's fingerprint,
	// whatever state it is in. Callers classify revoked/expired themselves.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// ConsumeRefreshToken conditionally sets revoked_at on a still-active
	// record. Returns ErrNotFound when the record was already consumed or
	// revoked, which is how concurrent rotations of the same secret lose.
	ConsumeRefreshToken(ctx context.Context, id string, now time.Time) error

	// RevokeRefreshToken sets revoked_at by fingerprint if still active.
	// Revoking an unknown or already-revoked token is a no-op.
	RevokeRefreshToken(ctx context.Context, hash string, now time.Time) error

	// RevokeAllForUser revokes every active token owned by the user in one
	// statement.
	RevokeAllForUser(ctx context.Context, userID string, now time.Time) error

	// RevokeFamily revokes every active token in a rotation family.
	RevokeFamily(ctx context.Context, familyID string, now time.Time) error

	// DeleteStaleRefreshTokens purges rows expired or revoked before the
	// cutoff. Housekeeping only; the core never hard-deletes.
	DeleteStaleRefreshTokens(ctx context.Context, cutoff time.Time) error
}

type PasswordResets interface {
	// CreatePasswordReset stores a new reset token record.
	CreatePasswordReset(ctx context.Context, r domain.PasswordReset) error

	// GetPasswordResetByHash returns the record for a token's fingerprint.
	GetPasswordResetByHash(ctx context.Context, hash string) (domain.PasswordReset, error)

	// ConsumePasswordReset conditionally sets used_at on an unused record.
	// Returns ErrNotFound when it was already consumed.
	ConsumePasswordReset(ctx context.Context, id string, now time.Time) error

	// DeleteStalePasswordResets purges rows expired before the cutoff.
	DeleteStalePasswordResets(ctx context.Context, cutoff time.Time) error
}
