package sched

import (
	"testing"
	"time"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestManualFiresInDeadlineOrder(t *testing.T) {
	m := NewManual(epoch)
	var order []string

	m.AfterFunc(300*time.Millisecond, func() { order = append(order, "c") })
	m.AfterFunc(100*time.Millisecond, func() { order = append(order, "a") })
	m.AfterFunc(200*time.Millisecond, func() { order = append(order, "b1") })
	m.AfterFunc(200*time.Millisecond, func() { order = append(order, "b2") })

	if n := m.Advance(250 * time.Millisecond); n != 3 {
		t.Fatalf("Expected 3 callbacks, got %d", n)
	}
	want := []string{"a", "b1", "b2"}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("Expected order %v, got %v", want, order)
			break
		}
	}
	if got := m.Now(); !got.Equal(epoch.Add(250 * time.Millisecond)) {
		t.Errorf("Expected clock at +250ms, got %v", got.Sub(epoch))
	}
	if m.Pending() != 1 {
		t.Errorf("Expected 1 pending, got %d", m.Pending())
	}
}

func TestManualCallbackSeesItsDeadline(t *testing.T) {
	m := NewManual(epoch)
	var seen time.Time
	m.AfterFunc(time.Second, func() { seen = m.Now() })

	m.Advance(5 * time.Second)

	if !seen.Equal(epoch.Add(time.Second)) {
		t.Errorf("Expected callback at +1s, got %v", seen.Sub(epoch))
	}
}

func TestManualStop(t *testing.T) {
	m := NewManual(epoch)
	fired := false
	h := m.AfterFunc(time.Second, func() { fired = true })

	if !h.Stop() {
		t.Error("Expected Stop to report a pending timer")
	}
	if h.Stop() {
		t.Error("Expected second Stop to report false")
	}
	m.Advance(2 * time.Second)
	if fired {
		t.Error("Stopped timer fired")
	}
}

func TestManualRearmFromCallback(t *testing.T) {
	m := NewManual(epoch)
	count := 0
	var tick func()
	tick = func() {
		count++
		m.AfterFunc(100*time.Millisecond, tick)
	}
	m.AfterFunc(100*time.Millisecond, tick)

	m.Advance(time.Second)

	if count != 10 {
		t.Errorf("Expected 10 ticks in 1s, got %d", count)
	}
}
