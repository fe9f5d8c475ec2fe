package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestSessionService(t, st)

	t.Run("register opens a session", func(t *testing.T) {
		sess, err := svc.Register(ctx, "Alice@Example.com ", "correct horse", false)
		require.NoError(t, err)
		require.NotEmpty(t, sess.AccessToken)
		require.NotEmpty(t, sess.RefreshToken)
		require.True(t, sess.RefreshExpiresAt.After(time.Now()))

		id, err := svc.Access.VerifyAccessToken(sess.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", id.Email)
	})

	t.Run("email is stored normalized", func(t *testing.T) {
		_, err := svc.Login(ctx, "ALICE@example.COM", "correct horse", false)
		require.NoError(t, err)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, "alice@example.com", "another pass", false)
		require.ErrorIs(t, err, ErrEmailAlreadyUsed)
	})

	t.Run("short password rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, "bob@example.com", "short", false)
		require.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("wrong password and unknown email look alike", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice@example.com", "wrong pass", false)
		require.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = svc.Login(ctx, "nobody@example.com", "whatever pass", false)
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestRefreshSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestSessionService(t, st)

	sess, err := svc.Register(ctx, "carol@example.com", "some password", false)
	require.NoError(t, err)

	t.Run("rotation yields a fresh pair", func(t *testing.T) {
		next, err := svc.RefreshSession(ctx, sess.RefreshToken)
		require.NoError(t, err)
		require.NotEmpty(t, next.AccessToken)
		require.NotEqual(t, sess.RefreshToken, next.RefreshToken)

		// Rotation inherits the absolute expiry of the chain.
		require.WithinDuration(t, sess.RefreshExpiresAt, next.RefreshExpiresAt, time.Second)

		sess = next
	})

	t.Run("garbage secret is invalid", func(t *testing.T) {
		_, err := svc.RefreshSession(ctx, "not-a-real-secret")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("replaying a rotated secret is reuse and kills the family", func(t *testing.T) {
		prev := sess.RefreshToken

		next, err := svc.RefreshSession(ctx, prev)
		require.NoError(t, err)

		_, err = svc.RefreshSession(ctx, prev)
		require.ErrorIs(t, err, ErrTokenReused)

		// Cascade: the successor issued above is dead too.
		_, err = svc.RefreshSession(ctx, next.RefreshToken)
		require.ErrorIs(t, err, ErrTokenReused)
	})
}

func TestRefreshExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestSessionService(t, st)

	t.Run("expired secret rejected", func(t *testing.T) {
		svc.Refresh.RefreshTTL = -time.Minute

		sess, err := svc.Register(ctx, "dave@example.com", "some password", false)
		require.NoError(t, err)

		_, err = svc.RefreshSession(ctx, sess.RefreshToken)
		require.ErrorIs(t, err, ErrTokenExpired)
	})
}

func TestRememberMeWidensWindow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestSessionService(t, st)

	short, err := svc.Register(ctx, "erin@example.com", "some password", false)
	require.NoError(t, err)
	long, err := svc.Login(ctx, "erin@example.com", "some password", true)
	require.NoError(t, err)

	require.WithinDuration(t, time.Now().Add(7*24*time.Hour), short.RefreshExpiresAt, time.Minute)
	require.WithinDuration(t, time.Now().Add(30*24*time.Hour), long.RefreshExpiresAt, time.Minute)
}

func TestLogout(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestSessionService(t, st)

	sess, err := svc.Register(ctx, "frank@example.com", "some password", false)
	require.NoError(t, err)

	t.Run("revoked secret no longer rotates", func(t *testing.T) {
		require.NoError(t, svc.Logout(ctx, sess.RefreshToken))

		_, err := svc.RefreshSession(ctx, sess.RefreshToken)
		require.ErrorIs(t, err, ErrTokenReused)
	})

	t.Run("logout is idempotent", func(t *testing.T) {
		require.NoError(t, svc.Logout(ctx, sess.RefreshToken))
		require.NoError(t, svc.Logout(ctx, "unknown-secret"))
		require.NoError(t, svc.Logout(ctx, ""))
	})
}

func TestLogoutEverywhere(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestSessionService(t, st)

	a, err := svc.Register(ctx, "grace@example.com", "some password", false)
	require.NoError(t, err)
	b, err := svc.Login(ctx, "grace@example.com", "some password", true)
	require.NoError(t, err)

	id, err := svc.Access.VerifyAccessToken(a.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.LogoutEverywhere(ctx, id.UserID))

	for _, raw := range []string{a.RefreshToken, b.RefreshToken} {
		_, err := svc.RefreshSession(ctx, raw)
		require.ErrorIs(t, err, ErrTokenReused)
	}
}

func TestChangePassword(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestSessionService(t, st)

	sess, err := svc.Register(ctx, "heidi@example.com", "old password", false)
	require.NoError(t, err)

	id, err := svc.Access.VerifyAccessToken(sess.AccessToken)
	require.NoError(t, err)

	t.Run("wrong current password rejected", func(t *testing.T) {
		err := svc.ChangePassword(ctx, id.UserID, "not the password", "new password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("weak replacement rejected", func(t *testing.T) {
		err := svc.ChangePassword(ctx, id.UserID, "old password", "tiny")
		require.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("change swaps the credential and ends all sessions", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(ctx, id.UserID, "old password", "new password"))

		_, err := svc.Login(ctx, "heidi@example.com", "old password", false)
		require.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = svc.Login(ctx, "heidi@example.com", "new password", false)
		require.NoError(t, err)

		_, err = svc.RefreshSession(ctx, sess.RefreshToken)
		require.ErrorIs(t, err, ErrTokenReused)
	})

	t.Run("unknown user", func(t *testing.T) {
		err := svc.ChangePassword(ctx, "01K0000000000000000000000X", "old password", "new password")
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}
