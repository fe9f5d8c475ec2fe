package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHousekeepingSweep(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestSessionService(t, st)

	// A token expired well past the retention window, and one freshly
	// rotated pair whose revoked predecessor must survive the sweep.
	svc.Refresh.RefreshTTL = -48 * time.Hour
	stale, err := svc.Register(ctx, "mia@example.com", "some password", false)
	require.NoError(t, err)

	svc.Refresh.RefreshTTL = 7 * 24 * time.Hour
	live, err := svc.Login(ctx, "mia@example.com", "some password", false)
	require.NoError(t, err)
	_, err = svc.RefreshSession(ctx, live.RefreshToken)
	require.NoError(t, err)

	hk := NewHousekeepingService(st, discardLogger(), time.Hour, 24*time.Hour)
	hk.cleanup()

	t.Run("stale token purged", func(t *testing.T) {
		_, err := svc.RefreshSession(ctx, stale.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("recently rotated predecessor still flags reuse", func(t *testing.T) {
		_, err := svc.RefreshSession(ctx, live.RefreshToken)
		require.ErrorIs(t, err, ErrTokenReused)
	})
}

func TestHousekeepingLifecycle(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	hk := NewHousekeepingService(st, discardLogger(), time.Hour, time.Hour)

	hk.Start()
	hk.Stop()
}
