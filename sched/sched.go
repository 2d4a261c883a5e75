// Package sched is the timer-handle API the simulation runs on. Every callback
// handed to a Scheduler runs on one logical thread, so game state needs no locks.
package sched

import (
	"time"

	"github.com/hoshinonyaruko/insane-snake/clock"
)

// Handle is a pending callback. Stop reports whether it was still pending.
// *time.Timer satisfies it.
type Handle interface {
	Stop() bool
}

// Scheduler runs fn once after d on the scheduler's goroutine.
type Scheduler interface {
	clock.Clock
	AfterFunc(d time.Duration, fn func()) Handle
}
