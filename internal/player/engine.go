package player

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/Alexander-D-Karpov/sonicflow/internal/logging"
	"github.com/Alexander-D-Karpov/sonicflow/pkg/types"
)

// Engine bridges play/pause/seek/volume intents to one Output. It is not
// safe for concurrent use; callers drive it from the UI goroutine.
type Engine struct {
	out    Output
	logger *zap.Logger

	track    *types.Track
	playing  bool
	progress float64
	volume   float64
	finished bool

	loadCancel context.CancelFunc

	analysis    bool
	analyser    Analyser
	analyserErr error

	onEnded func()
}

func NewEngine(out Output, volume float64, logger *zap.Logger) *Engine {
	e := &Engine{
		out:    out,
		logger: logging.OrNop(logger).Named("engine"),
		volume: clampUnit(volume),
	}

	out.OnEnded(e.ended)
	out.SetVolume(e.volume)

	return e
}

// EnableAnalysis asks the engine to build the analysis tap on the first play.
func (e *Engine) EnableAnalysis(enabled bool) {
	e.analysis = enabled
}

// OnEnded registers the advance callback fired when a track finishes.
func (e *Engine) OnEnded(fn func()) {
	e.onEnded = fn
}

func (e *Engine) Track() *types.Track { return e.track }
func (e *Engine) Playing() bool       { return e.playing }
func (e *Engine) Progress() float64   { return e.progress }
func (e *Engine) Volume() float64     { return e.volume }

// Finished reports whether the bound source played to its end.
func (e *Engine) Finished() bool { return e.finished }

func (e *Engine) Elapsed() time.Duration { return e.out.Position() }
func (e *Engine) Total() time.Duration   { return e.out.Duration() }

// SetTrack rebinds the output when the track identity changes. The previous
// source is always released before a new one is loaded.
func (e *Engine) SetTrack(track *types.Track) {
	if track.SameAs(e.track) {
		e.track = track
		return
	}

	e.unbind()
	e.track = track

	if track == nil {
		return
	}

	if !track.HasAudio() {
		e.logger.Info("track has no audio preview", zap.String("track", track.ID))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.loadCancel = cancel

	if err := e.out.Load(ctx, track); err != nil {
		e.logger.Warn("failed to load track",
			zap.String("track", track.ID),
			zap.Error(err))
		return
	}
	e.out.SetVolume(e.volume)

	e.logger.Debug("track bound", zap.String("track", track.ID), zap.String("url", track.AudioURL))

	if e.playing {
		e.startPlayback()
	}
}

// SetPlaying mirrors the host's play intent into the output. A rejected
// start is logged; the intent itself is kept.
func (e *Engine) SetPlaying(intent bool) {
	e.playing = intent
	e.finished = false

	if !intent {
		e.out.Pause()
		return
	}
	e.startPlayback()
}

func (e *Engine) startPlayback() {
	if !e.track.HasAudio() {
		e.logger.Debug("play ignored", zap.Error(ErrNoSource))
		return
	}

	if err := e.out.Play(); err != nil {
		e.logger.Warn("playback rejected",
			zap.String("track", e.track.ID),
			zap.Error(err))
		return
	}

	e.ensureAnalyser()
}

func (e *Engine) ensureAnalyser() {
	if !e.analysis || e.analyser != nil || e.analyserErr != nil {
		return
	}

	a, err := e.out.Analyser()
	if err != nil {
		e.analyserErr = err
		e.logger.Info("visualizer disabled", zap.Error(err))
		return
	}
	e.analyser = a
}

// Analyser returns the analysis tap, or nil when it was never built or is
// unsupported.
func (e *Engine) Analyser() Analyser {
	return e.analyser
}

// TimeUpdate recomputes progress from the output clock.
func (e *Engine) TimeUpdate() float64 {
	e.progress = progressPercent(e.out.Position(), e.out.Duration())
	return e.progress
}

// Seek moves to percent of the duration. Without a known duration the
// request is ignored.
func (e *Engine) Seek(percent float64) {
	if math.IsNaN(percent) {
		return
	}
	percent = math.Max(0, math.Min(100, percent))

	dur := e.out.Duration()
	if dur <= 0 {
		return
	}

	target := time.Duration(percent / 100 * float64(dur))
	if err := e.out.Seek(target); err != nil {
		e.logger.Warn("seek failed", zap.Duration("target", target), zap.Error(err))
		return
	}
	e.progress = percent
}

func (e *Engine) SetVolume(level float64) {
	if math.IsNaN(level) {
		return
	}
	e.volume = clampUnit(level)
	e.out.SetVolume(e.volume)
}

func (e *Engine) ended() {
	e.finished = true
	e.logger.Debug("track ended")
	if e.onEnded != nil {
		e.onEnded()
	}
}

func (e *Engine) unbind() {
	if e.loadCancel != nil {
		e.loadCancel()
		e.loadCancel = nil
	}
	if e.track != nil {
		e.out.Unload()
	}
	e.progress = 0
	e.finished = false
}

// Close releases the output and the analysis tap.
func (e *Engine) Close() error {
	e.unbind()
	e.track = nil

	if e.analyser != nil {
		if err := e.analyser.Close(); err != nil {
			e.logger.Debug("analyser close", zap.Error(err))
		}
		e.analyser = nil
	}

	return e.out.Close()
}

func progressPercent(pos, dur time.Duration) float64 {
	if dur <= 0 {
		return 0
	}

	p := float64(pos) / float64(dur) * 100
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	return math.Max(0, math.Min(100, p))
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
