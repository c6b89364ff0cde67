package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Alexander-D-Karpov/sonicflow/internal/handlers"
	"github.com/Alexander-D-Karpov/sonicflow/internal/logging"
	"github.com/Alexander-D-Karpov/sonicflow/pkg/types"
)

// PlayRecorder persists plays.
type PlayRecorder interface {
	RecordPlay(ctx context.Context, play *types.PlayHistory) error
}

// PlayHistoryService records every track the session starts.
type PlayHistoryService struct {
	store   PlayRecorder
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

func NewPlayHistoryService(store PlayRecorder, logger *zap.Logger) *PlayHistoryService {
	return &PlayHistoryService{
		store:   store,
		logger:  logging.OrNop(logger).Named("history"),
		timeout: 5 * time.Second,
		now:     time.Now,
	}
}

// Attach subscribes the service to track changes on bus.
func (p *PlayHistoryService) Attach(bus *handlers.EventBus) {
	bus.Subscribe(handlers.EventTrackChanged, func(data interface{}) {
		track, ok := data.(*types.Track)
		if !ok || track == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		if err := p.Record(ctx, track); err != nil {
			p.logger.Warn("failed to record play", zap.String("track", track.ID), zap.Error(err))
		}
	})
}

func (p *PlayHistoryService) Record(ctx context.Context, track *types.Track) error {
	play := &types.PlayHistory{
		PlayID:   uuid.NewString(),
		TrackID:  track.ID,
		PlayedAt: p.now().UTC(),
	}

	if err := p.store.RecordPlay(ctx, play); err != nil {
		return err
	}

	p.logger.Debug("play recorded", zap.String("track", track.ID), zap.String("play", play.PlayID))
	return nil
}
