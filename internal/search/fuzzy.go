package search

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/Alexander-D-Karpov/sonicflow/internal/config"
	"github.com/Alexander-D-Karpov/sonicflow/internal/logging"
	"github.com/Alexander-D-Karpov/sonicflow/pkg/types"
)

// Engine ranks catalog tracks against a free-text query. The in-memory
// catalog is searched first; the store adds anything the catalog misses.
type Engine struct {
	maxResults int
	store      types.TrackStore
	logger     *zap.Logger

	mu      sync.RWMutex
	catalog []*types.Track
}

func NewEngine(cfg *config.Config, store types.TrackStore, logger *zap.Logger) *Engine {
	maxResults := 50
	if cfg != nil && cfg.Search.MaxResults > 0 {
		maxResults = cfg.Search.MaxResults
	}
	return &Engine{
		maxResults: maxResults,
		store:      store,
		logger:     logging.OrNop(logger).Named("search"),
	}
}

// SetCatalog replaces the in-memory index.
func (e *Engine) SetCatalog(tracks []*types.Track) {
	e.mu.Lock()
	e.catalog = append([]*types.Track(nil), tracks...)
	e.mu.Unlock()
}

func (e *Engine) Search(ctx context.Context, query string, limit int) (*types.SearchResults, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &types.SearchResults{}, nil
	}
	if limit <= 0 || limit > e.maxResults {
		limit = e.maxResults
	}

	e.mu.RLock()
	catalog := e.catalog
	e.mu.RUnlock()

	tracks := rankTracks(catalog, query)

	if e.store != nil {
		stored, err := e.store.SearchTracks(ctx, query, limit)
		if err != nil {
			e.logger.Debug("store search failed", zap.String("query", query), zap.Error(err))
		} else {
			tracks = mergeTracks(tracks, stored)
		}
	}

	results := &types.SearchResults{
		Tracks: tracks,
		Total:  len(tracks),
	}
	if len(results.Tracks) > limit {
		results.Tracks = results.Tracks[:limit]
	}

	return results, nil
}

type scoredTrack struct {
	track *types.Track
	score float64
}

// rankTracks scores title matches highest, then artist, genre and location.
func rankTracks(tracks []*types.Track, query string) []*types.Track {
	var scored []scoredTrack
	queryLower := strings.ToLower(query)

	for _, track := range tracks {
		score := 0.0

		title := strings.ToLower(track.Title)
		if strings.Contains(title, queryLower) {
			score += 10.0
		} else if fuzzy.MatchFold(queryLower, title) {
			score += 3.0
		}

		distance := fuzzy.LevenshteinDistance(queryLower, title)
		if distance <= len(queryLower)/2 {
			score += float64(len(queryLower) - distance)
		}

		if strings.Contains(strings.ToLower(track.Artist), queryLower) {
			score += 7.0
		}
		if strings.Contains(strings.ToLower(track.Genre), queryLower) {
			score += 5.0
		}
		if strings.Contains(strings.ToLower(track.Location), queryLower) {
			score += 4.0
		}

		if score > 0 {
			scored = append(scored, scoredTrack{track: track, score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	return lo.Map(scored, func(s scoredTrack, _ int) *types.Track { return s.track })
}

func mergeTracks(first, second []*types.Track) []*types.Track {
	return lo.UniqBy(append(append([]*types.Track(nil), first...), second...), func(t *types.Track) string {
		return t.ID
	})
}
