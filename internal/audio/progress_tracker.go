package audio

import (
	"io"
	"time"
)

// ProgressTracker counts bytes read through it and reports them at most
// once per interval, plus once when finished.
type ProgressTracker struct {
	r        io.Reader
	total    int64
	done     int64
	interval time.Duration
	last     time.Time
	callback func(done, total int64)
}

func NewProgressTracker(r io.Reader, total int64, interval time.Duration, callback func(done, total int64)) *ProgressTracker {
	return &ProgressTracker{
		r:        r,
		total:    total,
		interval: interval,
		callback: callback,
	}
}

func (pt *ProgressTracker) Read(p []byte) (int, error) {
	n, err := pt.r.Read(p)
	if n > 0 {
		pt.done += int64(n)
		pt.report(false)
	}
	return n, err
}

// Finish reports the final count regardless of the interval.
func (pt *ProgressTracker) Finish() {
	pt.report(true)
}

func (pt *ProgressTracker) Done() int64 {
	return pt.done
}

// Fraction is the completed share, or -1 while the total is unknown.
func (pt *ProgressTracker) Fraction() float64 {
	if pt.total <= 0 {
		return -1
	}
	f := float64(pt.done) / float64(pt.total)
	if f > 1 {
		f = 1
	}
	return f
}

func (pt *ProgressTracker) report(force bool) {
	if pt.callback == nil {
		return
	}

	now := time.Now()
	if !force && now.Sub(pt.last) < pt.interval {
		return
	}
	pt.last = now

	total := pt.total
	if force && total <= 0 {
		total = pt.done
	}
	pt.callback(pt.done, total)
}
