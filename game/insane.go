package game

import (
	"math/rand"
	"time"

	"github.com/hoshinonyaruko/insane-snake/sched"
	"github.com/hoshinonyaruko/insane-snake/structs"
)

// insaneMode is the cosmetic escalation: a quarter-turn rotation of the play
// field and a burst of random background colours. It never touches gameplay.
type insaneMode struct {
	rng  *rand.Rand
	slot *sched.Slot

	steps    int
	interval time.Duration
	duration time.Duration

	rotation   int // 0/90/180/270
	flickering bool
	background structs.RGB
	frame      int
	fired      int

	onChange func()
}

func newInsaneMode(s sched.Scheduler, rng *rand.Rand, cfg Settings, onChange func()) *insaneMode {
	return &insaneMode{
		rng:      rng,
		slot:     sched.NewSlot(s),
		steps:    cfg.FlickerSteps,
		interval: cfg.FlickerInterval,
		duration: cfg.FlickerDuration,
		onChange: onChange,
	}
}

// trigger rotates by a random 90, 180 or 270 degrees and (re)starts the flicker.
func (m *insaneMode) trigger() {
	m.rotation = (m.rotation + (m.rng.Intn(3)+1)*90) % 360
	m.fired++
	m.flickering = true
	m.frame = 0
	m.flash()
}

// flash shows frame m.frame now, then schedules the next frame or the final
// reset so the whole burst lasts m.duration.
func (m *insaneMode) flash() {
	m.background = structs.RGB{
		R: uint8(m.rng.Intn(256)),
		G: uint8(m.rng.Intn(256)),
		B: uint8(m.rng.Intn(256)),
	}
	m.frame++
	if m.frame < m.steps {
		m.slot.Arm(m.interval, m.advance)
		return
	}
	rest := m.duration - time.Duration(m.steps-1)*m.interval
	if rest < 0 {
		rest = 0
	}
	m.slot.Arm(rest, m.clear)
}

func (m *insaneMode) advance() {
	m.flash()
	m.onChange()
}

func (m *insaneMode) clear() {
	m.flickering = false
	m.background = structs.RGB{}
	m.onChange()
}

// reset drops the flicker and straightens the board.
func (m *insaneMode) reset() {
	m.slot.Cancel()
	m.rotation = 0
	m.fired = 0
	m.flickering = false
	m.background = structs.RGB{}
	m.frame = 0
}

// stop ends a running flicker but keeps the rotation.
func (m *insaneMode) stop() {
	m.slot.Cancel()
	m.flickering = false
	m.background = structs.RGB{}
}
