package sched

import (
	"container/heap"
	"time"

	"github.com/hoshinonyaruko/insane-snake/clock"
)

// Manual is a virtual-time Scheduler for deterministic tests. Nothing fires
// until Advance is called; callbacks run on the caller's goroutine in deadline
// order, FIFO for equal deadlines.
type Manual struct {
	clock *clock.Mock
	queue timerQueue
	seq   uint64
	fired int
}

// NewManual creates a manual scheduler whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{clock: clock.NewMock(start)}
}

// Now returns the virtual time.
func (m *Manual) Now() time.Time {
	return m.clock.Now()
}

// AfterFunc schedules fn at Now()+d. Negative delays count as zero.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Handle {
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{
		m:   m,
		at:  m.clock.Now().Add(d),
		seq: m.seq,
		fn:  fn,
	}
	heap.Push(&m.queue, t)
	return t
}

// Advance moves virtual time forward by d, running every callback that falls
// due on the way. Callbacks observe Now() equal to their own deadline.
// Returns the number of callbacks run.
func (m *Manual) Advance(d time.Duration) int {
	if d < 0 {
		d = 0
	}
	target := m.clock.Now().Add(d)
	n := 0
	for m.queue.Len() > 0 {
		next := m.queue[0]
		if next.at.After(target) {
			break
		}
		heap.Pop(&m.queue)
		m.clock.Set(next.at)
		next.fn()
		n++
	}
	m.clock.Set(target)
	m.fired += n
	return n
}

// Pending returns the number of armed callbacks.
func (m *Manual) Pending() int {
	return m.queue.Len()
}

// Fired returns the number of callbacks run since creation.
func (m *Manual) Fired() int {
	return m.fired
}

type manualTimer struct {
	m     *Manual
	at    time.Time
	seq   uint64
	fn    func()
	index int
}

func (t *manualTimer) Stop() bool {
	if t.index < 0 {
		return false
	}
	heap.Remove(&t.m.queue, t.index)
	return true
}

type timerQueue []*manualTimer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].at.Equal(q[j].at) {
		return q[i].seq < q[j].seq
	}
	return q[i].at.Before(q[j].at)
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*manualTimer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
