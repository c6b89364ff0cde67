package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Alexander-D-Karpov/sonicflow/internal/logging"
	"github.com/Alexander-D-Karpov/sonicflow/pkg/types"
)

// FetchFunc returns the current remote catalog.
type FetchFunc func(ctx context.Context) ([]*types.Track, error)

// SyncManager keeps the remote part of the catalog cached locally and
// refreshes it periodically.
type SyncManager struct {
	fetch    FetchFunc
	storage  *Database
	interval time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}
	lastSync time.Time

	onComplete func([]*types.Track)
	onError    func(error)
}

func NewSyncManager(fetch FetchFunc, storage *Database, interval time.Duration, logger *zap.Logger) *SyncManager {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SyncManager{
		fetch:    fetch,
		storage:  storage,
		interval: interval,
		logger:   logging.OrNop(logger).Named("sync"),
	}
}

// OnComplete receives the freshly synced tracks. It runs on the sync goroutine.
func (sm *SyncManager) OnComplete(callback func([]*types.Track)) {
	sm.onComplete = callback
}

func (sm *SyncManager) OnError(callback func(error)) {
	sm.onError = callback
}

// Sync fetches the remote catalog once and replaces the cached copy.
func (sm *SyncManager) Sync(ctx context.Context) ([]*types.Track, error) {
	start := time.Now()

	tracks, err := sm.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch remote catalog: %w", err)
	}

	if len(tracks) > 0 {
		if err := sm.storage.SaveTracks(ctx, tracks); err != nil {
			return tracks, fmt.Errorf("cache remote catalog: %w", err)
		}
	}

	sm.mu.Lock()
	sm.lastSync = time.Now()
	sm.mu.Unlock()

	sm.logger.Debug("catalog synced",
		zap.Int("tracks", len(tracks)),
		zap.Duration("took", time.Since(start)))

	return tracks, nil
}

// Start runs Sync every interval until Stop or ctx cancellation.
func (sm *SyncManager) Start(ctx context.Context) {
	sm.mu.Lock()
	if sm.running {
		sm.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	sm.running = true
	sm.cancel = cancel
	sm.done = make(chan struct{})
	done := sm.done
	sm.mu.Unlock()

	sm.logger.Debug("sync manager starting", zap.Duration("interval", sm.interval))

	go func() {
		defer close(done)
		defer func() {
			sm.mu.Lock()
			sm.running = false
			sm.mu.Unlock()
			sm.logger.Debug("sync manager stopped")
		}()

		ticker := time.NewTicker(sm.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tracks, err := sm.Sync(ctx)
				switch {
				case errors.Is(err, context.Canceled):
					return
				case err != nil:
					sm.logger.Warn("periodic sync failed", zap.Error(err))
					if sm.onError != nil {
						sm.onError(err)
					}
				case sm.onComplete != nil:
					sm.onComplete(tracks)
				}
			}
		}
	}()
}

// Stop cancels the refresh loop and waits for it to exit.
func (sm *SyncManager) Stop() {
	sm.mu.Lock()
	if !sm.running {
		sm.mu.Unlock()
		return
	}
	cancel, done := sm.cancel, sm.done
	sm.mu.Unlock()

	cancel()
	<-done
}

func (sm *SyncManager) IsRunning() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.running
}

// LastSyncTime returns the last successful sync, falling back to the newest
// cached row from an earlier run.
func (sm *SyncManager) LastSyncTime(ctx context.Context) time.Time {
	sm.mu.Lock()
	last := sm.lastSync
	sm.mu.Unlock()
	if !last.IsZero() {
		return last
	}

	tracks, err := sm.storage.GetTracks(ctx, 1, 0)
	if err != nil || len(tracks) == 0 {
		return time.Time{}
	}
	return tracks[0].LastSync
}
