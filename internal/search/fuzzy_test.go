package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Alexander-D-Karpov/sonicflow/internal/config"
	"github.com/Alexander-D-Karpov/sonicflow/pkg/types"
)

type fakeStore struct {
	types.TrackStore
	results []*types.Track
	err     error
}

func (f *fakeStore) SearchTracks(context.Context, string, int) ([]*types.Track, error) {
	return f.results, f.err
}

func catalog() []*types.Track {
	return []*types.Track{
		{ID: "track-1", Title: "Yellow", Artist: "Coldplay", Genre: "Rock"},
		{ID: "track-2", Title: "Cruel Summer", Artist: "Taylor Swift", Genre: "Pop"},
		{ID: "track-5", Title: "Shape of You", Artist: "Ed Sheeran", Genre: "Pop"},
		{ID: "user-event-1", Title: "Rooftop", Artist: "Host", Genre: "Live", Location: "Global Hub"},
	}
}

func ids(tracks []*types.Track) []string {
	var out []string
	for _, t := range tracks {
		out = append(out, t.ID)
	}
	return out
}

func TestEngine_Search(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "title substring", query: "yell", want: []string{"track-1"}},
		{name: "case insensitive artist", query: "COLDPLAY", want: []string{"track-1"}},
		{name: "genre", query: "pop", want: []string{"track-2", "track-5"}},
		{name: "location", query: "global", want: []string{"user-event-1"}},
		{name: "typo within distance", query: "yelow", want: []string{"track-1"}},
		{name: "no match", query: "zzzz", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(&config.Config{}, nil, zap.NewNop())
			e.SetCatalog(catalog())

			res, err := e.Search(context.Background(), tt.query, 10)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(res.Tracks))
		})
	}
}

func TestEngine_TitleOutranksGenre(t *testing.T) {
	e := NewEngine(nil, nil, zap.NewNop())
	e.SetCatalog([]*types.Track{
		{ID: "genre", Title: "Something", Genre: "Soul"},
		{ID: "title", Title: "Soul Kitchen"},
	})

	res, err := e.Search(context.Background(), "soul", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "genre"}, ids(res.Tracks))
}

func TestEngine_EmptyQuery(t *testing.T) {
	e := NewEngine(nil, nil, zap.NewNop())
	e.SetCatalog(catalog())

	res, err := e.Search(context.Background(), "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, res.Tracks)
}

func TestEngine_MergesStoreWithoutDuplicates(t *testing.T) {
	store := &fakeStore{results: []*types.Track{
		{ID: "track-1", Title: "Yellow"},
		{ID: "cached", Title: "Yellow Submarine"},
	}}

	e := NewEngine(nil, store, zap.NewNop())
	e.SetCatalog(catalog())

	res, err := e.Search(context.Background(), "yellow", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"track-1", "cached"}, ids(res.Tracks))
}

func TestEngine_StoreFailureIsIgnored(t *testing.T) {
	e := NewEngine(nil, &fakeStore{err: errors.New("closed")}, zap.NewNop())
	e.SetCatalog(catalog())

	res, err := e.Search(context.Background(), "yellow", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"track-1"}, ids(res.Tracks))
}

func TestEngine_Limit(t *testing.T) {
	cfg := &config.Config{}
	cfg.Search.MaxResults = 1

	e := NewEngine(cfg, nil, zap.NewNop())
	e.SetCatalog(catalog())

	res, err := e.Search(context.Background(), "pop", 10)
	require.NoError(t, err)
	assert.Len(t, res.Tracks, 1)
	assert.Equal(t, 2, res.Total)
}
