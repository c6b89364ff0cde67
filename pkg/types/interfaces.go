package types

import (
	"context"
)

// TrackStore defines the catalog cache used by search and the catalog service
type TrackStore interface {
	GetTracks(ctx context.Context, limit, offset int) ([]*Track, error)
	GetTrack(ctx context.Context, id string) (*Track, error)
	SaveTracks(ctx context.Context, tracks []*Track) error
	SearchTracks(ctx context.Context, query string, limit int) ([]*Track, error)
}

// PlayerHost is the boundary the floating player reports to.
type PlayerHost interface {
	PlayPause()
	Next()
	Prev()
	RemoveFromQueue(index int)
	Close()
}
