package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Alexander-D-Karpov/sonicflow/internal/api"
	"github.com/Alexander-D-Karpov/sonicflow/internal/config"
	"github.com/Alexander-D-Karpov/sonicflow/internal/search"
	"github.com/Alexander-D-Karpov/sonicflow/internal/storage"
	"github.com/Alexander-D-Karpov/sonicflow/pkg/types"
)

type fakeLister struct {
	events []*types.EventDocument
	err    error
}

func (f *fakeLister) ListEvents(context.Context) ([]*types.EventDocument, error) {
	return f.events, f.err
}

func newStore(t *testing.T) *storage.Database {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Storage.DatabasePath = filepath.Join(dir, "catalog.db")
	cfg.Storage.CacheDir = filepath.Join(dir, "cache")

	db, err := storage.NewDatabase(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestStaticTracks(t *testing.T) {
	tracks := StaticTracks()
	require.Len(t, tracks, 12)

	assert.Equal(t, "track-1", tracks[0].ID)
	assert.Equal(t, "Yellow", tracks[0].Title)
	assert.Equal(t, "Coldplay", tracks[0].Artist)
	assert.Equal(t, "4:29", tracks[0].Duration)
	assert.Equal(t, "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-1.mp3", tracks[0].AudioURL)

	assert.Equal(t, "track-12", tracks[11].ID)
	assert.Equal(t, "Vaathi Coming", tracks[11].Title)
	assert.Equal(t, "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-12.mp3", tracks[11].AudioURL)

	// callers get their own copy
	tracks[0].Title = "changed"
	assert.Equal(t, "Yellow", StaticTracks()[0].Title)
}

func TestEventToTrack(t *testing.T) {
	tests := []struct {
		name  string
		event *types.EventDocument
		check func(t *testing.T, tr *types.Track)
	}{
		{
			name:  "defaults for empty document",
			event: &types.EventDocument{ID: "abc"},
			check: func(t *testing.T, tr *types.Track) {
				assert.Equal(t, "user-event-abc", tr.ID)
				assert.Equal(t, "Untitled Discovery", tr.Title)
				assert.Equal(t, "Host", tr.Artist)
				assert.Equal(t, "Live Experience", tr.Album)
				assert.Equal(t, "2:30:00", tr.Duration)
				assert.Equal(t, "Live", tr.Genre)
				assert.Equal(t, "Global Hub", tr.Location)
				assert.Equal(t, "Exclusive sonic flow experience.", tr.Description)
				assert.Empty(t, tr.DateTime)
				assert.Contains(t, tr.Cover, "photo-1459749411177-042180ce673c")
				assert.Equal(t, "https://api.dicebear.com/7.x/avataaars/svg?seed=user", tr.Organizer.Avatar)
				assert.Equal(t, "Sonic Organizer", tr.Organizer.Bio)
				assert.Equal(t, types.SourceRemote, tr.Source)
				assert.True(t, tr.HasAudio())
			},
		},
		{
			name: "document values win",
			event: &types.EventDocument{
				ID:        "x",
				Title:     "Rooftop",
				Organizer: "DJ Kai & Co",
				Image:     "https://img/x.jpg",
				Category:  "House",
				Date:      "2026-05-01T20:00",
				Location:  "Berlin",
			},
			check: func(t *testing.T, tr *types.Track) {
				assert.Equal(t, "Rooftop", tr.Title)
				assert.Equal(t, "DJ Kai & Co", tr.Artist)
				assert.Equal(t, "DJ Kai & Co", tr.Organizer.Name)
				assert.Equal(t, "https://img/x.jpg", tr.Cover)
				assert.Equal(t, "House", tr.Genre)
				assert.Equal(t, "2026-05-01T20:00", tr.DateTime)
				assert.Equal(t, "Berlin", tr.Location)
				assert.Equal(t, "https://api.dicebear.com/7.x/avataaars/svg?seed=DJ%20Kai%20%26%20Co", tr.Organizer.Avatar)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, EventToTrack(tt.event))
		})
	}
}

func TestCatalogService_LoadRemoteFirst(t *testing.T) {
	store := newStore(t)
	lister := &fakeLister{events: []*types.EventDocument{{ID: "1", Title: "A"}, {ID: "2", Title: "B"}}}

	svc := NewCatalogService(lister, store, nil, nil, zap.NewNop())
	catalog, err := svc.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, catalog, 14)
	assert.Equal(t, "user-event-1", catalog[0].ID)
	assert.Equal(t, "user-event-2", catalog[1].ID)
	assert.Equal(t, "track-1", catalog[2].ID)

	cached, err := store.GetTracks(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, cached, 2)
}

func TestCatalogService_FallsBackToCache(t *testing.T) {
	store := newStore(t)
	lister := &fakeLister{events: []*types.EventDocument{{ID: "1", Title: "Cached"}}}

	svc := NewCatalogService(lister, store, nil, nil, zap.NewNop())
	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	lister.events, lister.err = nil, errors.New("offline")
	catalog, err := svc.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "offline")

	require.Len(t, catalog, 13)
	assert.Equal(t, "user-event-1", catalog[0].ID)
	assert.Equal(t, "Cached", catalog[0].Title)
}

func TestCatalogService_StaticOnly(t *testing.T) {
	tests := []struct {
		name    string
		lister  EventLister
		wantErr bool
	}{
		{name: "remote failure without cache", lister: &fakeLister{err: errors.New("offline")}, wantErr: true},
		{name: "not configured", lister: &fakeLister{err: api.ErrNotConfigured}, wantErr: false},
		{name: "no remote", lister: nil, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewCatalogService(tt.lister, nil, nil, nil, zap.NewNop())
			catalog, err := svc.Load(context.Background())

			assert.Equal(t, tt.wantErr, err != nil)
			assert.Len(t, catalog, 12)
			assert.Equal(t, "track-1", catalog[0].ID)
		})
	}
}

func TestCatalogService_Search(t *testing.T) {
	engine := search.NewEngine(nil, nil, zap.NewNop())
	svc := NewCatalogService(&fakeLister{events: []*types.EventDocument{{ID: "1", Title: "Harbour Rave", Location: "Hamburg"}}}, nil, engine, nil, zap.NewNop())

	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	got, err := svc.Search(context.Background(), "hamburg")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "user-event-1", got[0].ID)

	got, err = svc.Search(context.Background(), "coldplay")
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "track-1", got[0].ID)
}
