package services

import (
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/Alexander-D-Karpov/sonicflow/internal/handlers"
	"github.com/Alexander-D-Karpov/sonicflow/internal/logging"
	"github.com/Alexander-D-Karpov/sonicflow/internal/player"
	"github.com/Alexander-D-Karpov/sonicflow/pkg/types"
)

// Session is the host side of the floating player: it owns the current
// track, the play intent, the queue and the catalog order used by next and
// prev. Like the widget it is driven from the UI goroutine only.
type Session struct {
	policy player.EndPolicy
	bus    *handlers.EventBus
	logger *zap.Logger

	catalog []*types.Track
	queue   *player.Queue
	current *types.Track
	playing bool

	onChange func(player.Input)
}

var _ types.PlayerHost = (*Session)(nil)

func NewSession(policy player.EndPolicy, bus *handlers.EventBus, logger *zap.Logger) *Session {
	return &Session{
		policy: policy,
		bus:    bus,
		logger: logging.OrNop(logger).Named("session"),
		queue:  player.NewQueue(),
	}
}

// OnChange registers the receiver of every new widget input.
func (s *Session) OnChange(fn func(player.Input)) {
	s.onChange = fn
}

// Callbacks wires widget requests back into the session.
func (s *Session) Callbacks() player.Callbacks {
	return player.Callbacks{
		OnPlayPause:       s.PlayPause,
		OnNext:            s.Next,
		OnPrev:            s.Prev,
		OnRemoveFromQueue: s.RemoveFromQueue,
		OnClose:           s.Close,
		OnEnded:           s.TrackEnded,
	}
}

func (s *Session) SetPolicy(policy player.EndPolicy) {
	s.policy = policy
}

func (s *Session) SetCatalog(tracks []*types.Track) {
	s.catalog = append([]*types.Track(nil), tracks...)
	s.logger.Debug("catalog replaced", zap.Int("tracks", len(tracks)))
}

func (s *Session) Catalog() []*types.Track {
	return s.catalog
}

func (s *Session) Current() *types.Track { return s.current }
func (s *Session) Playing() bool        { return s.playing }
func (s *Session) Queue() []*types.Track { return s.queue.Tracks() }

func (s *Session) Input() player.Input {
	return player.Input{
		CurrentTrack: s.current,
		IsPlaying:    s.playing,
		Queue:        s.queue.Tracks(),
	}
}

// Select makes track current and starts playing it.
func (s *Session) Select(track *types.Track) {
	if track == nil {
		return
	}

	s.current = track
	s.playing = true

	s.logger.Debug("track selected", zap.String("track", track.ID), zap.String("title", track.Title))
	s.publish(handlers.EventTrackChanged, track)
	s.changed()
}

func (s *Session) PlayPause() {
	if s.current == nil {
		return
	}

	s.playing = !s.playing
	s.publish(handlers.EventPlayState, s.playing)
	s.changed()
}

// Next plays the head of the queue, else the catalog item after the current
// one. At the end of the catalog nothing changes.
func (s *Session) Next() {
	s.advance()
}

// advance reports whether the track changed.
func (s *Session) advance() bool {
	if next := s.queue.PopNext(); next != nil {
		s.publish(handlers.EventQueueChanged, s.queue.Len())
		s.Select(next)
		return true
	}

	idx := s.catalogIndex()
	if idx == -1 || idx >= len(s.catalog)-1 {
		return false
	}

	s.Select(s.catalog[idx+1])
	return true
}

func (s *Session) Prev() {
	idx := s.catalogIndex()
	if idx <= 0 {
		return
	}
	s.Select(s.catalog[idx-1])
}

// TrackEnded applies the end policy. When nothing follows, playback stops
// on the finished track.
func (s *Session) TrackEnded() {
	var advanced bool

	switch s.policy {
	case player.EndQueueOnly:
		if next := s.queue.PopNext(); next != nil {
			s.publish(handlers.EventQueueChanged, s.queue.Len())
			s.Select(next)
			advanced = true
		}
	default:
		advanced = s.advance()
	}

	if advanced {
		return
	}

	s.logger.Debug("nothing to play after track end", zap.String("policy", string(s.policy)))
	s.playing = false
	s.publish(handlers.EventPlayState, false)
	s.changed()
}

func (s *Session) AddToQueue(track *types.Track) {
	if track == nil {
		return
	}
	s.queue.Add(track)
	s.publish(handlers.EventQueueChanged, s.queue.Len())
	s.changed()
}

func (s *Session) RemoveFromQueue(index int) {
	if !s.queue.RemoveAt(index) {
		return
	}
	s.publish(handlers.EventQueueChanged, s.queue.Len())
	s.changed()
}

// Close clears the current track and dismisses the widget.
func (s *Session) Close() {
	if s.current == nil {
		return
	}

	s.current = nil
	s.playing = false
	s.publish(handlers.EventTrackChanged, (*types.Track)(nil))
	s.changed()
}

func (s *Session) catalogIndex() int {
	if s.current == nil {
		return -1
	}
	_, idx, ok := lo.FindIndexOf(s.catalog, func(t *types.Track) bool {
		return t.ID == s.current.ID
	})
	if !ok {
		return -1
	}
	return idx
}

func (s *Session) publish(event string, data interface{}) {
	if s.bus != nil {
		s.bus.Publish(event, data)
	}
}

func (s *Session) changed() {
	if s.onChange != nil {
		s.onChange(s.Input())
	}
}
