// Package upload tracks how much of a file has been sent to the
// translation service.
package upload

import (
	"io"
	"sync"
)

// Percent converts a loaded/total byte count into a whole percentage
// clamped to [0, 100]. An unknown total yields 0.
func Percent(loaded, total int64) int {
	if total <= 0 || loaded <= 0 {
		return 0
	}
	if loaded >= total {
		return 100
	}
	return int(loaded * 100 / total)
}

// Tracker turns byte counts into a monotonic percentage and reports every
// change to an optional callback.
type Tracker struct {
	mu       sync.Mutex
	total    int64
	percent  int
	onChange func(int)
}

// NewTracker tracks an upload of total bytes. onChange may be nil.
func NewTracker(total int64, onChange func(percent int)) *Tracker {
	return &Tracker{total: total, onChange: onChange}
}

// Start marks the upload as begun. Progress starts at 1 so an active upload
// is distinguishable from an idle one.
func (t *Tracker) Start() {
	t.set(1)
}

// Report records loaded out of total bytes. A non-positive total keeps the
// total given to NewTracker. The returned percentage never decreases.
func (t *Tracker) Report(loaded, total int64) int {
	t.mu.Lock()
	if total > 0 {
		t.total = total
	}
	p := Percent(loaded, t.total)
	t.mu.Unlock()
	return t.set(p)
}

// Complete forces progress to 100.
func (t *Tracker) Complete() {
	t.set(100)
}

func (t *Tracker) Percent() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.percent
}

func (t *Tracker) set(p int) int {
	t.mu.Lock()
	if p <= t.percent {
		p = t.percent
		t.mu.Unlock()
		return p
	}
	t.percent = p
	cb := t.onChange
	t.mu.Unlock()

	if cb != nil {
		cb(p)
	}
	return p
}

// Reader wraps r so every read advances the tracker.
func (t *Tracker) Reader(r io.Reader) io.Reader {
	return &countingReader{r: r, t: t}
}

type countingReader struct {
	r    io.Reader
	t    *Tracker
	read int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.read += int64(n)
		c.t.Report(c.read, 0)
	}
	return n, err
}
