package dialog

import "time"

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// Timer invokes a callback periodically until stopped. Callbacks are
// expected to run on the caller's event loop, one at a time.
type Timer interface {
	Start(interval time.Duration, fn func())
	Stop()
}

// SystemClock is a Clock backed by time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	T time.Time
}

// Now returns the clock's current time.
func (c *ManualClock) Now() time.Time { return c.T }

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) { c.T = c.T.Add(d) }

// ManualTimer is a Timer driven by an external loop: Fire runs the callback
// if the timer is started. The terminal front ends call Fire from their
// own tick messages.
type ManualTimer struct {
	Interval time.Duration
	fn       func()
	running  bool
	stops    int
}

func (t *ManualTimer) Start(interval time.Duration, fn func()) {
	t.Interval = interval
	t.fn = fn
	t.running = true
}

func (t *ManualTimer) Stop() {
	if t.running {
		t.stops++
	}
	t.running = false
}

// Running reports whether the timer has been started and not stopped.
func (t *ManualTimer) Running() bool { return t.running }

// Stops returns how many times a running timer was stopped.
func (t *ManualTimer) Stops() int { return t.stops }

// Fire invokes the callback once if the timer is running.
func (t *ManualTimer) Fire() {
	if t.running && t.fn != nil {
		t.fn()
	}
}
