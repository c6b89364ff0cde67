package player

import (
	"context"
	"sync"
	"time"
)

// Dispatcher hands a function to the goroutine that owns widget state.
// The Fyne view passes fyne.Do.
type Dispatcher func(func())

// Immediate runs fn on the calling goroutine.
func Immediate(fn func()) { fn() }

// Loop fires tick on a fixed interval until stopped. Ticks are delivered
// through the dispatcher and dropped once Stop has run.
type Loop struct {
	interval time.Duration
	dispatch Dispatcher
	tick     func()

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewLoop(interval time.Duration, dispatch Dispatcher, tick func()) *Loop {
	if dispatch == nil {
		dispatch = Immediate
	}
	return &Loop{
		interval: interval,
		dispatch: dispatch,
		tick:     tick,
	}
}

func (l *Loop) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.done = make(chan struct{})

	go l.run(ctx, l.done)
}

// Stop cancels the loop and waits for its goroutine to exit.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancel != nil
}

func (l *Loop) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.dispatch(func() {
				if ctx.Err() != nil {
					return
				}
				l.tick()
			})
		}
	}
}
