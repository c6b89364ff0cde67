package player

import (
	"github.com/Alexander-D-Karpov/sonicflow/pkg/types"
)

// Queue is a FIFO list of pending tracks. Insertion order is play order and
// the same track may be queued more than once.
type Queue struct {
	tracks []*types.Track
}

func NewQueue(tracks ...*types.Track) *Queue {
	q := &Queue{}
	q.tracks = append(q.tracks, tracks...)
	return q
}

func (q *Queue) Add(track *types.Track) {
	if track == nil {
		return
	}
	q.tracks = append(q.tracks, track)
}

// RemoveAt drops the element at index, keeping the order of the rest.
// Out of range indices are ignored.
func (q *Queue) RemoveAt(index int) bool {
	if index < 0 || index >= len(q.tracks) {
		return false
	}

	copy(q.tracks[index:], q.tracks[index+1:])
	q.tracks[len(q.tracks)-1] = nil
	q.tracks = q.tracks[:len(q.tracks)-1]
	return true
}

func (q *Queue) PeekNext() *types.Track {
	if len(q.tracks) == 0 {
		return nil
	}
	return q.tracks[0]
}

func (q *Queue) PopNext() *types.Track {
	next := q.PeekNext()
	if next != nil {
		q.RemoveAt(0)
	}
	return next
}

func (q *Queue) Len() int {
	return len(q.tracks)
}

// Tracks returns a copy safe for the caller to keep.
func (q *Queue) Tracks() []*types.Track {
	out := make([]*types.Track, len(q.tracks))
	copy(out, q.tracks)
	return out
}

func (q *Queue) Clear() {
	q.tracks = nil
}
