package sched

import "time"

// Ticker calls fn repeatedly at a variable interval. It re-arms before calling
// fn, so fn may Reset the interval or Stop the ticker from inside the tick.
type Ticker struct {
	slot     *Slot
	interval time.Duration
	fn       func()
	running  bool
}

// NewTicker creates a stopped ticker.
func NewTicker(s Scheduler, fn func()) *Ticker {
	return &Ticker{slot: NewSlot(s), fn: fn}
}

// Start begins ticking every interval. A running ticker is restarted.
func (t *Ticker) Start(interval time.Duration) {
	t.interval = interval
	t.running = true
	t.slot.Arm(interval, t.fire)
}

// Reset changes the interval. A running ticker discards its pending tick and
// schedules the next one a full interval from now.
func (t *Ticker) Reset(interval time.Duration) {
	t.interval = interval
	if t.running {
		t.slot.Arm(interval, t.fire)
	}
}

// Stop cancels the pending tick.
func (t *Ticker) Stop() {
	t.running = false
	t.slot.Cancel()
}

func (t *Ticker) Running() bool {
	return t.running
}

func (t *Ticker) Interval() time.Duration {
	return t.interval
}

func (t *Ticker) fire() {
	t.slot.Arm(t.interval, t.fire)
	t.fn()
}
