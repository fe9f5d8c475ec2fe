package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/YassineIdiri/expense-tracker/internal/store"
)

// HousekeepingService periodically deletes dead database records to prevent
// unbounded growth of refresh_tokens and password_resets.
//
// Revoked refresh tokens are retained for a grace period past their end of
// life so replay of a rotated secret is still recognised as reuse rather
// than reported as an unknown token.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Interval  time.Duration
	RetainFor time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given
// interval. If interval is 0 or negative, defaults to 1 hour; if retainFor
// is 0 or negative, defaults to 24 hours.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval, retainFor time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if retainFor <= 0 {
		retainFor = 24 * time.Hour
	}

	return &HousekeepingService{
		Store:     store,
		Logger:    logger,
		Interval:  interval,
		RetainFor: retainFor,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// This is non-blocking and should be called after the database is ready.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

// run is the main background worker loop.
func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup performs the actual deletion of dead records.
// Each deletion is independent - failures in one won't stop the others.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()
	cutoff := time.Now().UTC().Add(-s.RetainFor)

	if err := s.Store.RefreshTokens().DeleteStaleRefreshTokens(ctx, cutoff); err != nil {
		s.Logger.Error("failed to delete stale refresh tokens", "error", err)
	} else {
		s.Logger.Debug("deleted stale refresh tokens", "cutoff", cutoff)
	}

	if err := s.Store.PasswordResets().DeleteStalePasswordResets(ctx, cutoff); err != nil {
		s.Logger.Error("failed to delete stale password resets", "error", err)
	} else {
		s.Logger.Debug("deleted stale password resets", "cutoff", cutoff)
	}
}
