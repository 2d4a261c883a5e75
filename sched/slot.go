package sched

import "time"

// Slot holds at most one pending callback for a single logical purpose (speed
// reversion, head reversion, food relocation, the game tick). Arming a slot
// cancels whatever it held before. Each arm is stamped with a generation so a
// callback that was already in flight when it got superseded is dropped.
//
// A Slot is not safe for concurrent use; it belongs to the scheduler goroutine.
type Slot struct {
	s   Scheduler
	h   Handle
	gen uint64
}

// NewSlot creates an empty slot on s.
func NewSlot(s Scheduler) *Slot {
	return &Slot{s: s}
}

// Arm cancels any pending callback and schedules fn after d.
func (sl *Slot) Arm(d time.Duration, fn func()) {
	sl.Cancel()
	gen := sl.gen
	sl.h = sl.s.AfterFunc(d, func() {
		if gen != sl.gen {
			return
		}
		sl.h = nil
		fn()
	})
}

// Cancel drops the pending callback, if any.
func (sl *Slot) Cancel() {
	if sl.h != nil {
		sl.h.Stop()
		sl.h = nil
	}
	sl.gen++
}

// Pending reports whether a callback is armed.
func (sl *Slot) Pending() bool {
	return sl.h != nil
}
