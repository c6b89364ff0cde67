package services

import (
	"fmt"

	"github.com/Alexander-D-Karpov/sonicflow/pkg/types"
)

const (
	unsplash     = "https://images.unsplash.com/photo-"
	previewAudio = "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-%d.mp3"
)

// staticCatalog is the built-in song list shown after any remote events.
var staticCatalog = []struct {
	title, artist, album, cover, duration, genre string
}{
	{"Yellow", "Coldplay", "Parachutes", "1470225620780-dba8ba36b745", "4:29", "Rock"},
	{"Cruel Summer", "Taylor Swift", "Lover", "1540039155733-5bb30b53aa14", "2:58", "Pop"},
	{"Rich Baby Daddy", "Drake", "For All The Dogs", "1508700115892-45ecd05ae2ad", "5:19", "Hip Hop"},
	{"Blinding Lights", "The Weeknd", "After Hours", "1524368535928-5b5e00ddc76b", "3:20", "Synthpop"},
	{"Shape of You", "Ed Sheeran", "Divide", "1511735111819-9a3f7709049c", "3:53", "Pop"},
	{"Dynamite", "BTS", "BE", "1514525253361-bee8718a7439", "3:19", "K-Pop"},
	{"Hello", "Adele", "25", "1493225255756-d9584f8606e9", "4:55", "Soul"},
	{"Levitating", "Dua Lipa", "Future Nostalgia", "1516280440614-37939bbacd81", "3:23", "Pop"},
	{"BIRDS OF A FEATHER", "Billie Eilish", "Hit Me Hard and Soft", "1524368535928-5b5e00ddc76b", "3:30", "Alt Pop"},
	{"FE!N", "Travis Scott", "Utopia", "1549834185-bd9f078a5dfe", "3:11", "Hip Hop"},
	{"Tum Hi Ho", "Arijit Singh", "Aashiqui 2", "1514525253361-bee8718a7439", "4:22", "Bollywood"},
	{"Vaathi Coming", "Anirudh Ravichander", "Master", "1470225620780-dba8ba36b745", "3:50", "Kollywood"},
}

// StaticTracks returns a fresh copy of the built-in catalog.
func StaticTracks() []*types.Track {
	tracks := make([]*types.Track, 0, len(staticCatalog))
	for i, s := range staticCatalog {
		tracks = append(tracks, &types.Track{
			ID:       fmt.Sprintf("track-%d", i+1),
			Title:    s.title,
			Artist:   s.artist,
			Album:    s.album,
			Cover:    unsplash + s.cover,
			Duration: s.duration,
			Genre:    s.genre,
			AudioURL: fmt.Sprintf(previewAudio, i+1),
			Source:   types.SourceStatic,
			Position: i,
		})
	}
	return tracks
}
