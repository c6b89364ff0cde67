package player_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/Alexander-D-Karpov/sonicflow/internal/player"
	"github.com/Alexander-D-Karpov/sonicflow/internal/player/mocks"
	"github.com/Alexander-D-Karpov/sonicflow/pkg/types"
)

type outputHarness struct {
	out   *mocks.MockOutput
	ended func()
}

// newOutput wires the calls every engine makes on construction and lets
// volume updates through.
func newOutput(t *testing.T) *outputHarness {
	t.Helper()

	ctrl := gomock.NewController(t)
	h := &outputHarness{out: mocks.NewMockOutput(ctrl)}

	h.out.EXPECT().OnEnded(gomock.Any()).Do(func(fn func()) { h.ended = fn })
	h.out.EXPECT().SetVolume(gomock.Any()).AnyTimes()

	return h
}

func audioTrack(id string) *types.Track {
	return &types.Track{ID: id, Title: id, AudioURL: "https://cdn.example.com/" + id + ".mp3"}
}

func TestEngine_SeekThenTimeUpdate(t *testing.T) {
	tests := []struct {
		name    string
		percent float64
	}{
		{name: "start", percent: 0},
		{name: "quarter", percent: 25},
		{name: "odd", percent: 33.3},
		{name: "end", percent: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newOutput(t)
			dur := 200 * time.Second
			target := time.Duration(tt.percent / 100 * float64(dur))

			h.out.EXPECT().Duration().Return(dur).AnyTimes()
			h.out.EXPECT().Seek(target).Return(nil)
			h.out.EXPECT().Position().Return(target)

			e := player.NewEngine(h.out, 0.8, zap.NewNop())
			e.Seek(tt.percent)

			assert.InDelta(t, tt.percent, e.TimeUpdate(), 1e-6)
		})
	}
}

func TestEngine_SeekClampsPercent(t *testing.T) {
	h := newOutput(t)
	h.out.EXPECT().Duration().Return(10 * time.Second).AnyTimes()
	h.out.EXPECT().Seek(10 * time.Second).Return(nil)
	h.out.EXPECT().Seek(time.Duration(0)).Return(nil)

	e := player.NewEngine(h.out, 0.8, zap.NewNop())
	e.Seek(150)
	assert.Equal(t, 100.0, e.Progress())

	e.Seek(-20)
	assert.Equal(t, 0.0, e.Progress())
}

func TestEngine_SeekWithoutDurationIsNoop(t *testing.T) {
	for _, dur := range []time.Duration{0, -time.Second} {
		h := newOutput(t)
		h.out.EXPECT().Duration().Return(dur).AnyTimes()
		h.out.EXPECT().Position().Return(3 * time.Second).AnyTimes()
		h.out.EXPECT().Seek(gomock.Any()).Times(0)

		e := player.NewEngine(h.out, 0.8, zap.NewNop())
		e.Seek(50)

		assert.Equal(t, 0.0, e.Progress())
		assert.Equal(t, 0.0, e.TimeUpdate())
	}
}

func TestEngine_SeekNaNIgnored(t *testing.T) {
	h := newOutput(t)
	h.out.EXPECT().Seek(gomock.Any()).Times(0)

	e := player.NewEngine(h.out, 0.8, zap.NewNop())
	e.Seek(math.NaN())

	assert.Equal(t, 0.0, e.Progress())
}

func TestEngine_TimeUpdateNeverNaN(t *testing.T) {
	tests := []struct {
		name string
		pos  time.Duration
		dur  time.Duration
		want float64
	}{
		{name: "zero duration", pos: time.Second, dur: 0, want: 0},
		{name: "negative duration", pos: time.Second, dur: -time.Second, want: 0},
		{name: "half", pos: 5 * time.Second, dur: 10 * time.Second, want: 50},
		{name: "past end", pos: 12 * time.Second, dur: 10 * time.Second, want: 100},
		{name: "negative position", pos: -time.Second, dur: 10 * time.Second, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newOutput(t)
			h.out.EXPECT().Position().Return(tt.pos)
			h.out.EXPECT().Duration().Return(tt.dur)

			e := player.NewEngine(h.out, 0.8, zap.NewNop())
			got := e.TimeUpdate()

			assert.False(t, math.IsNaN(got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEngine_VolumeReadsBackExactly(t *testing.T) {
	h := newOutput(t)
	h.out.EXPECT().Pause().AnyTimes()

	e := player.NewEngine(h.out, 0.8, zap.NewNop())
	e.SetVolume(0.3)
	assert.Equal(t, 0.3, e.Volume())

	e.SetPlaying(false)
	assert.Equal(t, 0.3, e.Volume())

	e.SetVolume(1.5)
	assert.Equal(t, 1.0, e.Volume())

	e.SetVolume(math.NaN())
	assert.Equal(t, 1.0, e.Volume())
}

func TestEngine_VolumeReappliedOnNewSource(t *testing.T) {
	ctrl := gomock.NewController(t)
	out := mocks.NewMockOutput(ctrl)

	out.EXPECT().OnEnded(gomock.Any())
	gomock.InOrder(
		out.EXPECT().SetVolume(0.8),
		out.EXPECT().SetVolume(0.3),
		out.EXPECT().Load(gomock.Any(), gomock.Any()).Return(nil),
		out.EXPECT().SetVolume(0.3),
	)

	e := player.NewEngine(out, 0.8, zap.NewNop())
	e.SetVolume(0.3)
	e.SetTrack(audioTrack("a"))
}

func TestEngine_PlayRejectionIsNonFatal(t *testing.T) {
	h := newOutput(t)
	h.out.EXPECT().Load(gomock.Any(), gomock.Any()).Return(nil)
	h.out.EXPECT().Play().Return(errors.New("device busy")).Times(2)

	e := player.NewEngine(h.out, 0.8, zap.NewNop())
	e.SetTrack(audioTrack("a"))

	require.NotPanics(t, func() { e.SetPlaying(true) })
	assert.True(t, e.Playing())

	e.SetPlaying(true)
	assert.True(t, e.Playing())
}

func TestEngine_PlayWithoutAudioIsRejectedQuietly(t *testing.T) {
	h := newOutput(t)
	h.out.EXPECT().Load(gomock.Any(), gomock.Any()).Times(0)
	h.out.EXPECT().Play().Times(0)

	e := player.NewEngine(h.out, 0.8, zap.NewNop())
	e.SetTrack(&types.Track{ID: "silent"})
	e.SetPlaying(true)

	assert.True(t, e.Playing())
}

func TestEngine_TrackChangeRebindsOnce(t *testing.T) {
	h := newOutput(t)
	a, b := audioTrack("a"), audioTrack("b")

	gomock.InOrder(
		h.out.EXPECT().Load(gomock.Any(), a).Return(nil),
		h.out.EXPECT().Unload(),
		h.out.EXPECT().Load(gomock.Any(), b).Return(nil),
		h.out.EXPECT().Unload(),
	)

	e := player.NewEngine(h.out, 0.8, zap.NewNop())
	e.SetTrack(a)
	e.SetTrack(&types.Track{ID: "a", AudioURL: a.AudioURL})
	e.SetTrack(b)
	e.SetTrack(nil)

	assert.Nil(t, e.Track())
}

func TestEngine_LoadFailureIsNonFatal(t *testing.T) {
	h := newOutput(t)
	h.out.EXPECT().Load(gomock.Any(), gomock.Any()).Return(errors.New("dns failure"))
	h.out.EXPECT().Play().Return(player.ErrNoSource)

	e := player.NewEngine(h.out, 0.8, zap.NewNop())
	e.SetTrack(audioTrack("a"))
	e.SetPlaying(true)

	assert.Equal(t, "a", e.Track().ID)
}

func TestEngine_PendingPlayStartsAfterBind(t *testing.T) {
	h := newOutput(t)

	e := player.NewEngine(h.out, 0.8, zap.NewNop())
	e.SetPlaying(true)

	gomock.InOrder(
		h.out.EXPECT().Load(gomock.Any(), gomock.Any()).Return(nil),
		h.out.EXPECT().Play().Return(nil),
	)
	e.SetTrack(audioTrack("a"))
}

func TestEngine_AnalyserBuiltOnceOnFirstPlay(t *testing.T) {
	h := newOutput(t)
	analyser := mocks.NewMockAnalyser(gomock.NewController(t))

	h.out.EXPECT().Load(gomock.Any(), gomock.Any()).Return(nil)
	h.out.EXPECT().Play().Return(nil).Times(2)
	h.out.EXPECT().Pause()
	h.out.EXPECT().Analyser().Return(analyser, nil).Times(1)

	e := player.NewEngine(h.out, 0.8, zap.NewNop())
	e.EnableAnalysis(true)
	e.SetTrack(audioTrack("a"))
	assert.Nil(t, e.Analyser())

	e.SetPlaying(true)
	e.SetPlaying(false)
	e.SetPlaying(true)
	assert.Same(t, analyser, e.Analyser())

	analyser.EXPECT().Close().Return(nil)
	h.out.EXPECT().Unload()
	h.out.EXPECT().Close().Return(nil)
	require.NoError(t, e.Close())
	assert.Nil(t, e.Analyser())
}

func TestEngine_AnalyserUnsupportedTriedOnce(t *testing.T) {
	h := newOutput(t)

	h.out.EXPECT().Load(gomock.Any(), gomock.Any()).Return(nil)
	h.out.EXPECT().Play().Return(nil).Times(2)
	h.out.EXPECT().Analyser().Return(nil, player.ErrAnalysisUnsupported).Times(1)

	e := player.NewEngine(h.out, 0.8, zap.NewNop())
	e.EnableAnalysis(true)
	e.SetTrack(audioTrack("a"))
	e.SetPlaying(true)
	e.SetPlaying(true)

	assert.Nil(t, e.Analyser())
}

func TestEngine_EndedInvokesAdvance(t *testing.T) {
	h := newOutput(t)

	e := player.NewEngine(h.out, 0.8, zap.NewNop())

	advanced := 0
	e.OnEnded(func() { advanced++ })

	require.NotNil(t, h.ended)
	h.ended()
	assert.Equal(t, 1, advanced)
}

func TestEngine_FinishedClearedByPlay(t *testing.T) {
	h := newOutput(t)
	h.out.EXPECT().Load(gomock.Any(), gomock.Any()).Return(nil)
	h.out.EXPECT().Play().Return(nil).Times(2)

	e := player.NewEngine(h.out, 0.8, zap.NewNop())
	e.SetTrack(audioTrack("a"))
	e.SetPlaying(true)
	assert.False(t, e.Finished())

	h.ended()
	assert.True(t, e.Finished())

	e.SetPlaying(true)
	assert.False(t, e.Finished())
}
