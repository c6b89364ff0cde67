package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/Alexander-D-Karpov/sonicflow/internal/api"
	"github.com/Alexander-D-Karpov/sonicflow/internal/handlers"
	"github.com/Alexander-D-Karpov/sonicflow/internal/logging"
	"github.com/Alexander-D-Karpov/sonicflow/internal/search"
	"github.com/Alexander-D-Karpov/sonicflow/pkg/types"
)

const (
	eventIDPrefix    = "user-event-"
	eventArtist      = "Host"
	eventTitle       = "Untitled Discovery"
	eventAlbum       = "Live Experience"
	eventDuration    = "2:30:00"
	eventGenre       = "Live"
	eventLocation    = "Global Hub"
	eventDescription = "Exclusive sonic flow experience."
	eventOrganizer   = "Sonic Organizer"
	eventCover       = "https://images.unsplash.com/photo-1459749411177-042180ce673c?auto=format&fit=crop&q=80&w=1200"
	avatarURL        = "https://api.dicebear.com/7.x/avataaars/svg?seed="

	maxCachedTracks = 1000
)

// EventLister is the remote source of catalog events.
type EventLister interface {
	ListEvents(ctx context.Context) ([]*types.EventDocument, error)
}

// CatalogService assembles the catalog: remote events first, then the
// built-in songs. Remote results are cached so an offline start still shows
// the last known events.
type CatalogService struct {
	remote EventLister
	store  types.TrackStore
	search *search.Engine
	bus    *handlers.EventBus
	logger *zap.Logger
}

func NewCatalogService(remote EventLister, store types.TrackStore, engine *search.Engine, bus *handlers.EventBus, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		remote: remote,
		store:  store,
		search: engine,
		bus:    bus,
		logger: logging.OrNop(logger).Named("catalog"),
	}
}

// EventToTrack maps one event document onto a playable catalog entry.
func EventToTrack(ev *types.EventDocument) *types.Track {
	organizer := lo.Ternary(ev.Organizer != "", ev.Organizer, eventArtist)
	seed := lo.Ternary(ev.Organizer != "", ev.Organizer, "user")

	return &types.Track{
		ID:          eventIDPrefix + ev.ID,
		Title:       lo.Ternary(ev.Title != "", ev.Title, eventTitle),
		Artist:      organizer,
		Album:       eventAlbum,
		Cover:       lo.Ternary(ev.Image != "", ev.Image, eventCover),
		Duration:    eventDuration,
		Genre:       lo.Ternary(ev.Category != "", ev.Category, eventGenre),
		DateTime:    ev.Date,
		Location:    lo.Ternary(ev.Location != "", ev.Location, eventLocation),
		Description: lo.Ternary(ev.Description != "", ev.Description, eventDescription),
		AudioURL:    fmt.Sprintf(previewAudio, 1),
		Source:      types.SourceRemote,
		Organizer: &types.Organizer{
			Name:   organizer,
			Avatar: avatarURL + strings.ReplaceAll(url.QueryEscape(seed), "+", "%20"),
			Bio:    eventOrganizer,
		},
	}
}

// FetchRemote lists the remote events as tracks.
func (c *CatalogService) FetchRemote(ctx context.Context) ([]*types.Track, error) {
	if c.remote == nil {
		return nil, api.ErrNotConfigured
	}

	events, err := c.remote.ListEvents(ctx)
	if err != nil {
		return nil, err
	}

	tracks := lo.Map(events, func(ev *types.EventDocument, i int) *types.Track {
		t := EventToTrack(ev)
		t.Position = i
		return t
	})
	return tracks, nil
}

// Load returns the full catalog. The error reports why remote events are
// missing; the returned catalog is always usable.
func (c *CatalogService) Load(ctx context.Context) ([]*types.Track, error) {
	remote, err := c.FetchRemote(ctx)
	switch {
	case err == nil:
		c.cache(ctx, remote)
	case errors.Is(err, api.ErrNotConfigured):
		c.logger.Info("remote catalog not configured, using built-in songs")
		remote, err = c.cached(ctx), nil
	default:
		c.logger.Warn("remote catalog unavailable", zap.Error(err))
		remote = c.cached(ctx)
		err = fmt.Errorf("sync events: %w", err)
	}

	return c.Compose(remote), err
}

// Compose prefixes remote tracks to the built-in catalog and refreshes the
// search index.
func (c *CatalogService) Compose(remote []*types.Track) []*types.Track {
	catalog := append(append([]*types.Track(nil), remote...), StaticTracks()...)

	if c.search != nil {
		c.search.SetCatalog(catalog)
	}
	if c.bus != nil {
		c.bus.Publish(handlers.EventCatalogLoaded, len(catalog))
	}

	c.logger.Debug("catalog composed", zap.Int("remote", len(remote)), zap.Int("total", len(catalog)))
	return catalog
}

// Search runs a fuzzy query over the last composed catalog.
func (c *CatalogService) Search(ctx context.Context, query string) ([]*types.Track, error) {
	if c.search == nil {
		return nil, nil
	}

	results, err := c.search.Search(ctx, query, 0)
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}
	return results.Tracks, nil
}

func (c *CatalogService) cache(ctx context.Context, remote []*types.Track) {
	if c.store == nil || len(remote) == 0 {
		return
	}
	if err := c.store.SaveTracks(ctx, remote); err != nil {
		c.logger.Warn("failed to cache remote catalog", zap.Error(err))
	}
}

func (c *CatalogService) cached(ctx context.Context) []*types.Track {
	if c.store == nil {
		return nil
	}

	tracks, err := c.store.GetTracks(ctx, maxCachedTracks, 0)
	if err != nil {
		c.logger.Warn("failed to read cached catalog", zap.Error(err))
		return nil
	}

	return lo.Filter(tracks, func(t *types.Track, _ int) bool {
		return t.Source == types.SourceRemote
	})
}
