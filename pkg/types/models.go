package types

import (
	"time"
)

type TrackSource string

const (
	SourceStatic TrackSource = "static"
	SourceRemote TrackSource = "firestore"
)

// Track is handed to the player by the host and never mutated by it.
type Track struct {
	ID          string      `json:"id" db:"id"`
	Title       string      `json:"title" db:"title"`
	Artist      string      `json:"artist" db:"artist"`
	Album       string      `json:"album" db:"album"`
	Cover       string      `json:"cover" db:"cover"`
	Duration    string      `json:"duration" db:"duration"`
	AudioURL    string      `json:"audio_url" db:"audio_url"`
	Genre       string      `json:"genre" db:"genre"`
	Description string      `json:"description" db:"description"`
	Location    string      `json:"location" db:"location"`
	DateTime    string      `json:"date_time" db:"date_time"`
	Organizer   *Organizer  `json:"organizer" db:"-"`
	Source      TrackSource `json:"source" db:"source"`

	Position  int       `json:"-" db:"position"`
	LastSync  time.Time `json:"-" db:"last_sync"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}

type Organizer struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Bio    string `json:"bio"`
}

// HasAudio reports whether the track carries a streamable preview.
func (t *Track) HasAudio() bool {
	return t != nil && t.AudioURL != ""
}

// SameAs compares track identity, not content.
func (t *Track) SameAs(other *Track) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.ID == other.ID
}

type EventDocument struct {
	ID          string
	Title       string
	Organizer   string
	Image       string
	Category    string
	Date        string
	Location    string
	Description string
}

type PlayHistory struct {
	ID        int64     `db:"id"`
	PlayID    string    `db:"play_id"`
	TrackID   string    `db:"track_id"`
	PlayedAt  time.Time `db:"played_at"`
	CreatedAt time.Time `db:"created_at"`
}

type SearchResults struct {
	Tracks []*Track `json:"tracks"`
	Total  int      `json:"total"`
}

type CacheEntry struct {
	Key        string    `db:"key"`
	URL        string    `db:"url"`
	LocalPath  string    `db:"local_path"`
	Size       int64     `db:"size"`
	AccessedAt time.Time `db:"accessed_at"`
	CreatedAt  time.Time `db:"created_at"`
}
