package game

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/hoshinonyaruko/insane-snake/sched"
	"github.com/hoshinonyaruko/insane-snake/structs"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// harness builds a controller on virtual time. Food is parked in the
// bottom-right corner after every published frame, so only feed() can put it
// in the snake's way.
type harness struct {
	t      *testing.T
	c      *Controller
	m      *sched.Manual
	frames []structs.Snapshot
}

func newHarness(t *testing.T, cfg Settings) *harness {
	t.Helper()
	m := sched.NewManual(epoch)
	c, err := New(cfg, m, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	h := &harness{t: t, c: c, m: m}
	h.park()
	c.Subscribe(func(s structs.Snapshot) {
		h.frames = append(h.frames, s)
		h.park()
	})
	return h
}

func (h *harness) park() {
	cfg := h.c.Settings()
	h.c.Food().Place(structs.FoodPlain, float64(cfg.Width), float64(cfg.Height))
}

// feed puts food of the given type on the cell the head enters next tick.
func (h *harness) feed(kind structs.FoodType) {
	head := h.c.Snake().Head()
	dx, dy := h.c.Snake().Direction().Delta()
	w, fh := h.c.Food().Size()
	h.c.Food().Place(kind, float64(head.X+dx)+0.5-w/2, float64(head.Y+dy)+0.5-fh/2)
}

func (h *harness) eat(kind structs.FoodType) {
	h.t.Helper()
	score, length := h.c.Score(), h.c.Snake().Len()
	h.feed(kind)
	h.c.Tick()
	if h.c.Score() != score+1 || h.c.Snake().Len() != length+1 {
		h.t.Fatalf("Expected to eat %v: score %d->%d, length %d->%d",
			kind, score, h.c.Score(), length, h.c.Snake().Len())
	}
}

func wideSettings() Settings {
	cfg := DefaultSettings()
	cfg.Width = 200
	return cfg
}

func TestFreshGameAdvancesRight(t *testing.T) {
	h := newHarness(t, DefaultSettings())

	want := []structs.Segment{{X: 6, Y: 5}, {X: 7, Y: 5}, {X: 8, Y: 5}}
	for i, w := range want {
		h.c.Tick()
		if got := h.c.Snake().Head(); got != w {
			t.Errorf("Tick %d: expected head %v, got %v", i+1, w, got)
		}
		if h.c.Snake().Len() != 1 {
			t.Errorf("Tick %d: expected length 1, got %d", i+1, h.c.Snake().Len())
		}
	}
	if h.c.State() != structs.Running {
		t.Errorf("Expected Running, got %v", h.c.State())
	}
}

func TestEatingIncrementsScoreAndLength(t *testing.T) {
	for _, ft := range structs.FoodTypes {
		t.Run(ft.String(), func(t *testing.T) {
			h := newHarness(t, DefaultSettings())
			h.eat(ft)
			if h.c.Score() != 1 || h.c.Snake().Len() != 2 {
				t.Errorf("Expected score 1 length 2, got score %d length %d", h.c.Score(), h.c.Snake().Len())
			}
		})
	}
}

func TestEatingRespawnsFood(t *testing.T) {
	h := newHarness(t, DefaultSettings())
	before := h.c.Food()
	h.eat(structs.FoodPlain)

	if h.c.Food() == before {
		t.Error("Expected a new food item after eating")
	}
	if before.Active() {
		t.Error("Expected the eaten food's lifetime timer to be cancelled")
	}
	if !h.c.Food().Active() {
		t.Error("Expected the new food to have a lifetime timer")
	}
}

func TestNearMissDoesNotEat(t *testing.T) {
	h := newHarness(t, DefaultSettings())
	head := h.c.Snake().Head()
	w, fh := h.c.Food().Size()
	// food centre exactly one cell below the next head centre
	h.c.Food().Place(structs.FoodPlain, float64(head.X+1)+0.5-w/2, float64(head.Y+1)+0.5-fh/2)

	h.c.Tick()
	if h.c.Score() != 0 {
		t.Errorf("Expected distance of exactly one cell to miss, score %d", h.c.Score())
	}
}

func TestInsaneModeThresholds(t *testing.T) {
	h := newHarness(t, DefaultSettings())

	for i := 1; i <= 9; i++ {
		h.eat(structs.FoodPlain)
	}
	if h.c.insane.fired != 0 {
		t.Fatalf("Insane mode fired before score 10")
	}

	h.eat(structs.FoodPlain) // 9 -> 10
	if h.c.insane.fired != 1 {
		t.Fatalf("Expected insane mode at 10, fired %d times", h.c.insane.fired)
	}
	snap := h.c.Snapshot()
	if snap.Rotation == 0 || snap.Rotation%90 != 0 {
		t.Errorf("Expected rotation by a multiple of 90, got %d", snap.Rotation)
	}
	if !snap.Flicker {
		t.Error("Expected flicker to start")
	}

	h.eat(structs.FoodPlain) // 10 -> 11
	if h.c.insane.fired != 1 {
		t.Errorf("Insane mode fired again at 11")
	}

	for i := 12; i <= 19; i++ {
		h.eat(structs.FoodPlain)
	}
	if h.c.insane.fired != 1 {
		t.Errorf("Insane mode fired between 11 and 19")
	}
	h.eat(structs.FoodPlain) // 19 -> 20
	if h.c.insane.fired != 2 {
		t.Errorf("Expected second insane mode at 20, fired %d times", h.c.insane.fired)
	}
	if h.c.s.nextInsane != 30 {
		t.Errorf("Expected next trigger 30, got %d", h.c.s.nextInsane)
	}
}

func TestInsaneFlickerClearsAfterTwoSeconds(t *testing.T) {
	h := newHarness(t, DefaultSettings())
	for i := 0; i < 10; i++ {
		h.eat(structs.FoodPlain)
	}
	rotation := h.c.Snapshot().Rotation
	frames := len(h.frames)

	h.m.Advance(1999 * time.Millisecond)
	if !h.c.Snapshot().Flicker {
		t.Error("Flicker ended early")
	}
	h.m.Advance(time.Millisecond)

	snap := h.c.Snapshot()
	if snap.Flicker || snap.Background != (structs.RGB{}) {
		t.Errorf("Expected flicker cleared at 2s, got %+v", snap.Background)
	}
	if snap.Rotation != rotation {
		t.Errorf("Flicker end must keep rotation %d, got %d", rotation, snap.Rotation)
	}
	// 9 colour changes after the first plus the final reset
	if got := len(h.frames) - frames; got < 10 {
		t.Errorf("Expected at least 10 published flicker frames, got %d", got)
	}
}

func TestSpeedEffectReverts(t *testing.T) {
	h := newHarness(t, wideSettings())
	h.eat(structs.FoodSpeed)

	if got := h.c.Snake().Speed(); got != 100*time.Millisecond {
		t.Fatalf("Expected fast speed 100ms, got %v", got)
	}
	if got := h.c.ticker.Interval(); got != 100*time.Millisecond {
		t.Errorf("Expected ticker rescheduled at 100ms, got %v", got)
	}

	h.m.Advance(5 * time.Second)
	if got := h.c.Snake().Speed(); got != 250*time.Millisecond {
		t.Errorf("Expected baseline 250ms after 5s, got %v", got)
	}
	if got := h.c.ticker.Interval(); got != 250*time.Millisecond {
		t.Errorf("Expected ticker back at 250ms, got %v", got)
	}
}

func TestSpeedRetriggerRevertsOnce(t *testing.T) {
	h := newHarness(t, wideSettings())
	reversions := 0
	last := h.c.Snake().Speed()
	h.c.Subscribe(func(s structs.Snapshot) {
		cur := time.Duration(s.SpeedMs) * time.Millisecond
		if last == 100*time.Millisecond && cur == 250*time.Millisecond {
			reversions++
		}
		last = cur
	})

	h.eat(structs.FoodSpeed)
	h.m.Advance(3 * time.Second)
	h.eat(structs.FoodSpeed) // reversion now due at 3s + 5s

	h.m.Advance(5*time.Second - time.Millisecond) // t = 7.999s, past the stale 5s deadline
	if reversions != 0 || h.c.Snake().Speed() != 100*time.Millisecond {
		t.Fatalf("Stale reversion fired: reversions %d, speed %v", reversions, h.c.Snake().Speed())
	}

	h.m.Advance(time.Millisecond) // t = 8s
	if reversions != 1 {
		t.Errorf("Expected one reversion at 8s, got %d", reversions)
	}

	h.m.Advance(10 * time.Second)
	if reversions != 1 {
		t.Errorf("Expected exactly one reversion overall, got %d", reversions)
	}
}

func TestEnlargeEffectReverts(t *testing.T) {
	h := newHarness(t, DefaultSettings())
	h.eat(structs.FoodEnlarge)
	if !h.c.Snapshot().HeadEnlarged {
		t.Fatal("Expected head enlarged")
	}

	h.m.Advance(2 * time.Second)
	h.eat(structs.FoodEnlarge)
	h.m.Advance(4 * time.Second) // first deadline (5s) passed, second due at 7s
	if !h.c.Snake().HeadEnlarged() {
		t.Error("Stale head reversion fired")
	}
	h.m.Advance(time.Second)
	if h.c.Snake().HeadEnlarged() {
		t.Error("Expected head size reset 5s after the last enlarge")
	}
}

func TestSpeedChangeReschedulesLoop(t *testing.T) {
	h := newHarness(t, wideSettings())
	h.c.Start()

	h.feed(structs.FoodSpeed)
	h.m.Advance(250 * time.Millisecond) // first tick eats
	if h.c.Score() != 1 {
		t.Fatalf("Expected the first tick to eat, score %d", h.c.Score())
	}
	ticks := h.c.Snapshot().Tick

	h.m.Advance(100 * time.Millisecond)
	if got := h.c.Snapshot().Tick; got != ticks+1 {
		t.Errorf("Expected a tick 100ms after the speed-up, got %d ticks", got-ticks)
	}
	h.m.Advance(time.Second)
	if got := h.c.Snapshot().Tick; got != ticks+11 {
		t.Errorf("Expected 11 fast ticks in 1.1s, got %d", got-ticks)
	}
}

func TestBoundaryEndsGame(t *testing.T) {
	h := newHarness(t, DefaultSettings())

	for i := 0; i < 24; i++ { // (5,5) -> (29,5)
		h.c.Tick()
	}
	if h.c.State() != structs.Running {
		t.Fatalf("Game ended early at %v", h.c.Snake().Head())
	}
	h.c.Tick()
	if h.c.State() != structs.GameOver {
		t.Fatalf("Expected GameOver at %v", h.c.Snake().Head())
	}
	snap := h.c.Snapshot()
	if !snap.GameOver || snap.Message != GameOverMessage {
		t.Errorf("Expected game over message, got %+v", snap)
	}
}

func TestSelfCollisionEndsGame(t *testing.T) {
	h := newHarness(t, DefaultSettings())
	for i := 0; i < 4; i++ {
		h.eat(structs.FoodPlain)
	}
	if h.c.Snake().Len() != 5 {
		t.Fatalf("Expected length 5, got %d", h.c.Snake().Len())
	}

	for _, d := range []structs.Direction{structs.Down, structs.Left, structs.Up} {
		h.m.Advance(150 * time.Millisecond)
		if !h.c.Turn(d) {
			t.Fatalf("Turn %v rejected", d)
		}
		h.c.Tick()
	}
	if h.c.State() != structs.GameOver {
		t.Errorf("Expected the loop back into the body to end the game, head %v", h.c.Snake().Head())
	}
}

func TestGameOverStopsEveryTimer(t *testing.T) {
	cfg := DefaultSettings()
	cfg.Origin = structs.Segment{X: 27, Y: 5}
	cfg.InsaneStep = 2
	h := newHarness(t, cfg)
	h.c.Start()

	h.eat(structs.FoodSpeed)   // (28,5)
	h.eat(structs.FoodEnlarge) // (29,5), insane mode at 2
	if !h.c.Snapshot().Flicker {
		t.Fatal("Expected flicker running before the crash")
	}
	h.c.Tick() // (30,5)
	if h.c.State() != structs.GameOver {
		t.Fatalf("Expected GameOver, head %v", h.c.Snake().Head())
	}
	if n := h.m.Pending(); n != 0 {
		t.Errorf("Expected no pending timers after game over, got %d", n)
	}

	snap := h.c.Snapshot()
	if h.m.Advance(time.Minute) != 0 {
		t.Error("Timers fired after game over")
	}
	if got := h.c.Snapshot(); got.Tick != snap.Tick || got.SpeedMs != snap.SpeedMs {
		t.Errorf("Frozen game changed: %+v -> %+v", snap, got)
	}
	if h.c.Turn(structs.Up) {
		t.Error("Expected Turn to be ignored after game over")
	}
}

func TestRestartOnlyFromGameOver(t *testing.T) {
	cfg := DefaultSettings()
	cfg.InsaneStep = 1
	h := newHarness(t, cfg)
	h.c.Start()
	h.eat(structs.FoodSpeed)
	firstSession := h.c.Snapshot().Session
	for h.c.State() == structs.Running {
		h.c.Tick()
	}
	if !h.c.Restart() {
		t.Fatal("Expected Restart to succeed from GameOver")
	}
	if h.c.Restart() {
		t.Error("Expected a second Restart to be rejected while running")
	}
	if h.c.Snapshot().Session == firstSession {
		t.Error("Expected a new session id after restart")
	}
}

func TestInputRestartsThenSteers(t *testing.T) {
	cfg := DefaultSettings()
	cfg.InsaneStep = 1
	h := newHarness(t, cfg)
	h.c.Start()
	h.eat(structs.FoodSpeed)
	for h.c.State() == structs.Running {
		h.c.Tick()
	}

	h.c.Input(structs.InputOther)
	snap := h.c.Snapshot()
	if snap.State != structs.Running {
		t.Fatalf("Expected Running after input, got %v", snap.State)
	}
	want := structs.Snapshot{Score: 0, Length: 1, Rotation: 0, SpeedMs: 250, Direction: "right"}
	if snap.Score != want.Score || snap.Length != want.Length || snap.Rotation != want.Rotation ||
		snap.SpeedMs != want.SpeedMs || snap.Direction != want.Direction {
		t.Errorf("Expected fresh session %+v, got %+v", want, snap)
	}
	if snap.Segments[0] != cfg.Origin || snap.Flicker || snap.HeadEnlarged || snap.Message != "" {
		t.Errorf("Expected a clean board, got %+v", snap)
	}
	if !h.c.ticker.Running() || h.c.ticker.Interval() != 250*time.Millisecond {
		t.Errorf("Expected ticking at 250ms, running %v interval %v", h.c.ticker.Running(), h.c.ticker.Interval())
	}

	// the next input is a direction again
	h.c.Input(structs.InputUp)
	if h.c.State() != structs.Running || h.c.Snake().Direction() != structs.Up {
		t.Errorf("Expected the second input to steer up, got %v %v", h.c.State(), h.c.Snake().Direction())
	}
	h.m.Advance(250 * time.Millisecond)
	if got := h.c.Snake().Head(); got != (structs.Segment{X: 5, Y: 4}) {
		t.Errorf("Expected head (5,4), got %v", got)
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
	}{
		{"zero width", func(s *Settings) { s.Width = 0 }},
		{"zero cell", func(s *Settings) { s.CellSize = 0 }},
		{"origin outside", func(s *Settings) { s.Origin = structs.Segment{X: 30, Y: 0} }},
		{"bad direction", func(s *Settings) { s.Direction = structs.Direction(9) }},
		{"zero speed", func(s *Settings) { s.FastSpeed = 0 }},
		{"zero effect", func(s *Settings) { s.EffectDuration = 0 }},
		{"negative debounce", func(s *Settings) { s.Debounce = -time.Millisecond }},
		{"zero insane step", func(s *Settings) { s.InsaneStep = 0 }},
		{"zero flicker", func(s *Settings) { s.FlickerSteps = 0 }},
		{"food too big", func(s *Settings) { s.FoodWidth = 31 }},
		{"lifetime inverted", func(s *Settings) { s.FoodMaxLife = time.Second }},
	}

	if err := DefaultSettings().Validate(); err != nil {
		t.Fatalf("Expected defaults to validate, got %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSettings()
			tt.modify(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("Expected ErrInvalidSettings, got %v", err)
			}
			if _, err := New(cfg, sched.NewManual(epoch), rand.New(rand.NewSource(1))); err == nil {
				t.Error("Expected New to reject the settings")
			}
		})
	}
}
