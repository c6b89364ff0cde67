package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
	"go.uber.org/zap"

	"github.com/Alexander-D-Karpov/sonicflow/internal/config"
	"github.com/Alexander-D-Karpov/sonicflow/internal/logging"
	"github.com/Alexander-D-Karpov/sonicflow/internal/player"
	"github.com/Alexander-D-Karpov/sonicflow/pkg/types"
)

var (
	speakerInitialized bool
	speakerErr         error
	speakerMutex       sync.Mutex
)

var _ player.Output = (*Player)(nil)

// Player is the beep-backed media output. The signal chain per source is
// decoder -> resample -> pause ctrl -> analysis tap -> volume -> speaker.
type Player struct {
	mu sync.Mutex

	cfg        *config.Config
	logger     *zap.Logger
	fetcher    *Fetcher
	dispatch   player.Dispatcher
	sampleRate beep.SampleRate

	tap      *Tap
	analyzer *Analyzer

	generation uint64
	track      *types.Track
	streamer   beep.StreamSeekCloser
	format     beep.Format
	ctrl       *beep.Ctrl
	volume     *effects.Volume
	level      float64
	ready      bool
	started    bool
	finished   bool
	wantPlay   bool
	loadErr    error
	closed     bool

	onEnded  func()
	onBuffer func(float64)
}

func NewPlayer(cfg *config.Config, dispatch player.Dispatcher, logger *zap.Logger) *Player {
	logger = logging.OrNop(logger)
	if dispatch == nil {
		dispatch = player.Immediate
	}

	return &Player{
		cfg:        cfg,
		logger:     logger.Named("audio"),
		fetcher:    NewFetcher(cfg, logger),
		dispatch:   dispatch,
		sampleRate: beep.SampleRate(cfg.Audio.SampleRate),
		tap:        NewTap(max(cfg.Audio.FFTSize, 32)),
		level:      cfg.Audio.DefaultVolume,
	}
}

func (p *Player) initializeSpeaker() error {
	speakerMutex.Lock()
	defer speakerMutex.Unlock()

	if speakerInitialized {
		return speakerErr
	}
	speakerInitialized = true

	bufferSize := p.sampleRate.N(time.Second / 10)
	if runtime.GOOS == "linux" {
		bufferSize = p.sampleRate.N(time.Second / 5)
	}

	p.logger.Debug("initializing speaker",
		zap.Int("sample_rate", int(p.sampleRate)),
		zap.Int("buffer_size", bufferSize),
		zap.String("os", runtime.GOOS))

	if err := speaker.Init(p.sampleRate, bufferSize); err != nil {
		speakerErr = fmt.Errorf("speaker initialization failed: %w", err)
	}
	return speakerErr
}

// OnEnded registers the end-of-track callback. It is delivered through the
// dispatcher.
func (p *Player) OnEnded(fn func()) {
	p.mu.Lock()
	p.onEnded = fn
	p.mu.Unlock()
}

// OnBuffer reports download progress of the current source in [0,1].
func (p *Player) OnBuffer(fn func(float64)) {
	p.mu.Lock()
	p.onBuffer = fn
	p.mu.Unlock()
}

// Load releases the current source and starts fetching the track in the
// background.
func (p *Player) Load(ctx context.Context, track *types.Track) error {
	if track == nil || track.AudioURL == "" {
		return player.ErrNoSource
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return player.ErrClosed
	}
	p.stopInternal()
	p.generation++
	gen := p.generation
	p.track = track
	p.mu.Unlock()

	p.logger.Debug("loading", zap.String("track", track.ID), zap.String("url", track.AudioURL))

	go p.load(ctx, gen, track)
	return nil
}

func (p *Player) load(ctx context.Context, gen uint64, track *types.Track) {
	data, err := p.fetcher.Fetch(ctx, track.AudioURL, func(done, total int64) {
		if total > 0 {
			p.reportBuffer(gen, float64(done)/float64(total))
		}
	})
	if err != nil {
		p.fail(gen, track, err)
		return
	}

	streamer, format, err := Decode(track.AudioURL, data)
	if err != nil {
		p.fail(gen, track, err)
		return
	}

	if err := p.initializeSpeaker(); err != nil {
		streamer.Close()
		p.fail(gen, track, err)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.generation || ctx.Err() != nil {
		streamer.Close()
		p.logger.Debug("track changed during loading, discarding", zap.String("track", track.ID))
		return
	}

	p.streamer = streamer
	p.format = format
	p.ready = true

	p.logger.Debug("source ready",
		zap.String("track", track.ID),
		zap.Int("sample_rate", int(format.SampleRate)),
		zap.Int("channels", format.NumChannels),
		zap.Duration("duration", format.SampleRate.D(streamer.Len())))

	p.startInternal(gen)
}

func (p *Player) fail(gen uint64, track *types.Track, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.generation {
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}

	p.loadErr = err
	p.logger.Warn("failed to load audio",
		zap.String("track", track.ID),
		zap.String("url", track.AudioURL),
		zap.Error(err))
}

// startInternal builds the signal chain and hands it to the speaker. The
// chain starts paused unless a play was requested. Caller holds p.mu.
func (p *Player) startInternal(gen uint64) {
	var src beep.Streamer = p.streamer
	if p.format.SampleRate != p.sampleRate {
		quality := max(1, min(p.cfg.Audio.ResampleQuality, 64))
		src = beep.Resample(quality, p.format.SampleRate, p.sampleRate, p.streamer)
	}

	p.ctrl = &beep.Ctrl{Streamer: src, Paused: !p.wantPlay}
	p.volume = &effects.Volume{
		Streamer: p.tap.Wrap(p.ctrl),
		Base:     2,
	}
	p.applyVolume()

	speaker.Play(beep.Seq(p.volume, beep.Callback(func() {
		// runs on the speaker goroutine with the speaker lock held
		go p.ended(gen)
	})))

	p.started = true
	p.finished = false
}

func (p *Player) ended(gen uint64) {
	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		return
	}
	p.finished = true
	p.started = false
	fn := p.onEnded
	p.mu.Unlock()

	p.logger.Debug("playback finished")

	if fn != nil {
		p.dispatch(fn)
	}
}

func (p *Player) reportBuffer(gen uint64, fraction float64) {
	p.mu.Lock()
	fn := p.onBuffer
	current := gen == p.generation
	p.mu.Unlock()

	if fn != nil && current {
		p.dispatch(func() { fn(fraction) })
	}
}

// Play starts or resumes the source. While loading, the request is kept and
// honoured once the source is ready.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case p.closed:
		return player.ErrClosed
	case p.track == nil:
		return player.ErrNoSource
	case p.loadErr != nil:
		return p.loadErr
	}

	p.wantPlay = true
	if !p.ready {
		return nil
	}

	if p.finished {
		if p.streamer.Position() >= p.streamer.Len()-1 {
			if err := p.streamer.Seek(0); err != nil {
				return fmt.Errorf("rewind: %w", err)
			}
		}
		p.startInternal(p.generation)
		return nil
	}

	speaker.Lock()
	p.ctrl.Paused = false
	speaker.Unlock()

	p.logger.Debug("resumed playback")
	return nil
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.wantPlay = false
	if p.ctrl == nil {
		return
	}

	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()

	p.logger.Debug("paused playback")
}

func (p *Player) Seek(position time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ready {
		return player.ErrNoSource
	}

	n := p.format.SampleRate.N(position)
	n = max(0, min(n, p.streamer.Len()-1))

	speaker.Lock()
	err := p.streamer.Seek(n)
	speaker.Unlock()

	if err != nil {
		return fmt.Errorf("seek: %w", err)
	}

	p.logger.Debug("seeked", zap.Duration("position", position))
	return nil
}

func (p *Player) SetVolume(level float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.level = level
	if p.volume == nil {
		return
	}

	speaker.Lock()
	p.applyVolume()
	speaker.Unlock()
}

// applyVolume maps [0,1] onto beep's base-2 gain. Caller holds p.mu.
func (p *Player) applyVolume() {
	p.volume.Volume = (p.level - 1) * 5
	p.volume.Silent = p.level == 0
}

func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ready {
		return 0
	}

	speaker.Lock()
	pos := p.streamer.Position()
	speaker.Unlock()

	return p.format.SampleRate.D(pos)
}

func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ready {
		return 0
	}
	return p.format.SampleRate.D(p.streamer.Len())
}

// Analyser returns the FFT analyser over the tap, created on first use.
func (p *Player) Analyser() (player.Analyser, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, player.ErrClosed
	}

	a := p.cfg.Audio
	if a.FFTSize < 32 || a.FFTSize&(a.FFTSize-1) != 0 {
		return nil, fmt.Errorf("%w: fft size %d", player.ErrAnalysisUnsupported, a.FFTSize)
	}

	if p.analyzer == nil {
		p.analyzer = NewAnalyzer(p.tap, a.FFTSize, a.Smoothing, a.MinDecibels, a.MaxDecibels)
		p.logger.Debug("analyser created", zap.Int("fft_size", a.FFTSize))
	}
	return p.analyzer, nil
}

func (p *Player) Unload() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopInternal()
	p.generation++
	p.track = nil
}

// stopInternal clears the speaker and closes the decoder. Caller holds p.mu.
func (p *Player) stopInternal() {
	if p.started {
		speaker.Clear()
	}

	if p.streamer != nil {
		if err := p.streamer.Close(); err != nil {
			p.logger.Debug("error closing streamer", zap.Error(err))
		}
		p.streamer = nil
	}

	p.ctrl = nil
	p.volume = nil
	p.ready = false
	p.started = false
	p.finished = false
	p.wantPlay = false
	p.loadErr = nil
	p.tap.Reset()
}

func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.stopInternal()
	p.generation++
	p.track = nil
	p.closed = true

	p.logger.Debug("player closed")
	return nil
}

type memoryFile struct {
	*bytes.Reader
}

func (memoryFile) Close() error { return nil }

// Decode picks a decoder from the URL's extension, defaulting to MP3.
func Decode(location string, data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	rc := memoryFile{bytes.NewReader(data)}

	ext := strings.ToLower(path.Ext(stripQuery(location)))

	var (
		s   beep.StreamSeekCloser
		f   beep.Format
		err error
	)
	switch ext {
	case ".wav", ".wave":
		s, f, err = wav.Decode(rc)
	case ".ogg", ".oga":
		s, f, err = vorbis.Decode(rc)
	default:
		s, f, err = mp3.Decode(rc)
	}
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("decode audio: %w", err)
	}
	return s, f, nil
}

func stripQuery(location string) string {
	if i := strings.IndexAny(location, "?#"); i >= 0 {
		return location[:i]
	}
	return location
}

var _ io.ReadSeekCloser = memoryFile{}
