package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConcurrentRotationHasOneWinner(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestSessionService(t, st)

	sess, err := svc.Register(ctx, "race@example.com", "some password", false)
	require.NoError(t, err)

	const attempts = 8

	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Refresh.VerifyAndRotate(ctx, sess.RefreshToken)
		}()
	}
	wg.Wait()

	var wins int
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			require.ErrorIs(t, err, ErrTokenReused)
		}
	}
	require.Equal(t, 1, wins, "exactly one concurrent rotation may succeed")
}

func TestExtendOnRotate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestSessionService(t, st)
	svc.Refresh.ExtendOnRotate = true
	svc.Refresh.RefreshTTL = 24 * time.Hour

	sess, err := svc.Register(ctx, "ivan@example.com", "some password", false)
	require.NoError(t, err)

	// Widen the TTL between issuance and rotation so a restarted window is
	// distinguishable from an inherited one.
	svc.Refresh.RefreshTTL = 48 * time.Hour

	rotated, err := svc.Refresh.VerifyAndRotate(ctx, sess.RefreshToken)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(48*time.Hour), rotated.ExpiresAt, time.Minute)
	require.True(t, rotated.ExpiresAt.After(sess.RefreshExpiresAt))
}

func TestRevokeFamilyOnReuseDisabled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestSessionService(t, st)
	svc.Refresh.RevokeFamilyOnReuse = false

	sess, err := svc.Register(ctx, "judy@example.com", "some password", false)
	require.NoError(t, err)

	next, err := svc.Refresh.VerifyAndRotate(ctx, sess.RefreshToken)
	require.NoError(t, err)

	// Replay still fails, but the live successor survives.
	_, err = svc.Refresh.VerifyAndRotate(ctx, sess.RefreshToken)
	require.ErrorIs(t, err, ErrTokenReused)

	_, err = svc.Refresh.VerifyAndRotate(ctx, next.NewRaw)
	require.NoError(t, err)
}
