package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/YassineIdiri/expense-tracker/internal/mail"
	"github.com/stretchr/testify/require"
)

// captureMailer records outgoing messages for inspection.
type captureMailer struct {
	sent []struct{ to, subject, body string }
}

func (m *captureMailer) Send(_ context.Context, to, subject, body string) error {
	m.sent = append(m.sent, struct{ to, subject, body string }{to, subject, body})
	return nil
}

var _ mail.Mailer = (*captureMailer)(nil)

func TestPasswordResetRequest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestSessionService(t, st)

	_, err := svc.Register(ctx, "kim@example.com", "some password", false)
	require.NoError(t, err)

	t.Run("unknown email succeeds without mail", func(t *testing.T) {
		mailer := &captureMailer{}
		reset := newTestResetService(t, st)
		reset.Mailer = mailer

		require.NoError(t, reset.Request(ctx, "nobody@example.com"))
		require.Empty(t, mailer.sent)
	})

	t.Run("known email gets a link", func(t *testing.T) {
		mailer := &captureMailer{}
		reset := newTestResetService(t, st)
		reset.Mailer = mailer

		require.NoError(t, reset.Request(ctx, " KIM@example.com"))
		require.Len(t, mailer.sent, 1)
		require.Equal(t, "kim@example.com", mailer.sent[0].to)
		require.Contains(t, mailer.sent[0].body, "reset-password?token=")
	})
}

func TestPasswordResetComplete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestSessionService(t, st)
	mailer := &captureMailer{}
	reset := newTestResetService(t, st)
	reset.Mailer = mailer

	sess, err := svc.Register(ctx, "leo@example.com", "old password", false)
	require.NoError(t, err)

	require.NoError(t, reset.Request(ctx, "leo@example.com"))
	require.Len(t, mailer.sent, 1)
	token := tokenFromResetMail(t, mailer.sent[0].body)

	t.Run("weak replacement rejected before consuming", func(t *testing.T) {
		require.ErrorIs(t, reset.Complete(ctx, token, "tiny"), ErrWeakPassword)
	})

	t.Run("redeems once and ends all sessions", func(t *testing.T) {
		require.NoError(t, reset.Complete(ctx, token, "new password"))

		_, err := svc.Login(ctx, "leo@example.com", "new password", false)
		require.NoError(t, err)
		_, err = svc.Login(ctx, "leo@example.com", "old password", false)
		require.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = svc.RefreshSession(ctx, sess.RefreshToken)
		require.ErrorIs(t, err, ErrTokenReused)
	})

	t.Run("second redemption rejected", func(t *testing.T) {
		require.ErrorIs(t, reset.Complete(ctx, token, "third password"), ErrInvalidToken)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		require.ErrorIs(t, reset.Complete(ctx, "bogus", "whatever password"), ErrInvalidToken)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		reset.ResetTTL = -time.Minute
		require.NoError(t, reset.Request(ctx, "leo@example.com"))

		expired := tokenFromResetMail(t, mailer.sent[len(mailer.sent)-1].body)
		require.ErrorIs(t, reset.Complete(ctx, expired, "fresh password"), ErrTokenExpired)
	})
}

func tokenFromResetMail(t *testing.T, body string) string {
	t.Helper()

	const marker = "token="
	i := strings.Index(body, marker)
	require.GreaterOrEqual(t, i, 0)

	rest := body[i+len(marker):]
	if j := strings.IndexAny(rest, " \n"); j >= 0 {
		rest = rest[:j]
	}
	return rest
}
