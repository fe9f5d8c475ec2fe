package service

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/YassineIdiri/expense-tracker/internal/mail"
	"github.com/YassineIdiri/expense-tracker/internal/store"
	"github.com/YassineIdiri/expense-tracker/internal/store/drivers/sqlite"
	"github.com/YassineIdiri/expense-tracker/pkg/cryptox"
	"github.com/YassineIdiri/expense-tracker/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "service-test-*")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper.key"))

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

// newTestStore opens a file-backed store so concurrent transactions see the
// same database, unlike :memory: where each pooled connection gets its own.
func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newTestSessionService(t *testing.T, st store.Store) *SessionService {
	t.Helper()

	kp, err := jwtx.GenerateKeypair()
	require.NoError(t, err)

	return &SessionService{
		Store:       st,
		Credentials: &CredentialVerifier{Store: st},
		Access: &AccessTokenCodec{
			Keypair:   kp,
			Issuer:    "auth-test",
			AccessTTL: jwtx.DefaultAccessTokenTTL,
		},
		Refresh: &RefreshTokenService{
			Store:               st,
			RefreshTTL:          7 * 24 * time.Hour,
			RememberMeTTL:       30 * 24 * time.Hour,
			RevokeFamilyOnReuse: true,
		},
	}
}

func newTestResetService(t *testing.T, st store.Store) *PasswordResetService {
	t.Helper()

	return &PasswordResetService{
		Store:   st,
		Mailer:  mail.LogMailer{},
		BaseURL: "http://localhost:3000",
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
