// Package game drives one snake session: the variable-rate tick, collision
// arbitration, timed food effects and the insane-mode escalation.
//
// A Controller is not safe for concurrent use. Every method, and every timer it
// arms, must run on the goroutine of the sched.Scheduler it was built with.
package game

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/google/uuid"
	"github.com/hoshinonyaruko/insane-snake/sched"
	"github.com/hoshinonyaruko/insane-snake/snake"
	"github.com/hoshinonyaruko/insane-snake/structs"
)

// session is the state that a restart throws away or resets in place.
type session struct {
	id         string
	snake      *snake.Snake
	food       *snake.Food
	score      snake.Score
	state      structs.State
	message    string
	nextInsane int
	tick       uint64
}

// Controller owns the session and every timer that acts on it.
type Controller struct {
	cfg   Settings
	sched sched.Scheduler
	rng   *rand.Rand

	s session

	ticker      *sched.Ticker
	speedRevert *sched.Slot
	headRevert  *sched.Slot
	insane      *insaneMode

	subscribers []func(structs.Snapshot)
}

// New validates cfg and prepares a running session. Call Start to begin ticking.
func New(cfg Settings, s sched.Scheduler, rng *rand.Rand) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{
		cfg:         cfg,
		sched:       s,
		rng:         rng,
		speedRevert: sched.NewSlot(s),
		headRevert:  sched.NewSlot(s),
	}
	c.ticker = sched.NewTicker(s, c.Tick)
	c.insane = newInsaneMode(s, rng, cfg, c.publish)

	c.s = session{
		id:         uuid.NewString(),
		snake:      snake.New(s, cfg.Origin, cfg.Direction, cfg.BaseSpeed, cfg.Debounce),
		state:      structs.Running,
		nextInsane: cfg.InsaneStep,
	}
	food, err := snake.NewFood(cfg.foodConfig(), s, rng)
	if err != nil {
		return nil, fmt.Errorf("spawn food: %w", err)
	}
	food.OnRelocate(c.publish)
	c.s.food = food
	return c, nil
}

// Subscribe registers fn to receive a snapshot after every tick and every
// visible change. fn runs on the scheduler goroutine and must not block.
func (c *Controller) Subscribe(fn func(structs.Snapshot)) {
	c.subscribers = append(c.subscribers, fn)
}

// Start begins ticking at the snake's current speed.
func (c *Controller) Start() {
	if c.s.state != structs.Running {
		return
	}
	c.ticker.Start(c.s.snake.Speed())
	log.Printf("session %s started: %dx%d grid, tick %v", c.s.id, c.cfg.Width, c.cfg.Height, c.s.snake.Speed())
	c.publish()
}

// Stop cancels every timer the controller owns. Used on shutdown.
func (c *Controller) Stop() {
	c.ticker.Stop()
	c.cancelEffects()
	c.insane.stop()
	c.s.food.Stop()
}

// Tick runs one simulation step. The ticker calls it; tests may call it directly.
func (c *Controller) Tick() {
	if c.s.state == structs.GameOver {
		return
	}
	c.s.tick++

	// 1. 移动
	c.s.snake.Move()

	// 2. 碰撞检测，必须在移动之后
	if c.s.snake.CheckBoundaryCollision(c.cfg.Width, c.cfg.Height) || c.s.snake.CheckSelfCollision() {
		c.gameOver()
		c.publish()
		return
	}

	// 3. 吃食物
	c.checkFood()

	// 4. 渲染
	c.publish()
}

// checkFood eats the food when the head centre is within one cell of the food
// centre: effect first, then growth, score, respawn and insane-mode check.
func (c *Controller) checkFood() {
	head := c.s.snake.Head()
	if c.s.food.DistanceTo(float64(head.X)+0.5, float64(head.Y)+0.5) >= 1 {
		return
	}

	speedBefore := c.s.snake.Speed()
	eaten := c.s.food.Type()
	c.applyEffect(eaten)

	c.s.snake.Grow()
	c.s.score.Add(1)
	c.respawnFood()

	if c.s.score.Get() >= c.s.nextInsane {
		c.insane.trigger()
		c.s.nextInsane += c.cfg.InsaneStep
		log.Printf("session %s: insane mode #%d at score %d, rotation %d",
			c.s.id, c.insane.fired, c.s.score.Get(), c.insane.rotation)
	}

	if c.s.snake.Speed() != speedBefore {
		c.ticker.Reset(c.s.snake.Speed())
	}
}

// applyEffect starts the food's effect and (re)arms its single reversion timer.
func (c *Controller) applyEffect(t structs.FoodType) {
	switch t {
	case structs.FoodSpeed:
		c.s.snake.SetSpeed(c.cfg.FastSpeed)
		c.speedRevert.Arm(c.cfg.EffectDuration, c.revertSpeed)
	case structs.FoodEnlarge:
		c.s.snake.EnlargeHead()
		c.headRevert.Arm(c.cfg.EffectDuration, c.revertHead)
	}
}

func (c *Controller) revertSpeed() {
	c.s.snake.SetSpeed(c.cfg.BaseSpeed)
	c.ticker.Reset(c.cfg.BaseSpeed)
	c.publish()
}

func (c *Controller) revertHead() {
	c.s.snake.ResetHeadSize()
	c.publish()
}

func (c *Controller) cancelEffects() {
	c.speedRevert.Cancel()
	c.headRevert.Cancel()
}

// respawnFood replaces the eaten food with a fresh one.
func (c *Controller) respawnFood() {
	c.s.food.Stop()
	food, err := snake.NewFood(c.cfg.foodConfig(), c.sched, c.rng)
	if err != nil {
		// the config passed Validate in New, so keep the old item wandering
		log.Printf("session %s: respawn food: %v", c.s.id, err)
		c.s.food.Relocate()
		return
	}
	food.OnRelocate(c.publish)
	c.s.food = food
}

// gameOver stops the tick source and every pending timer, then waits for input.
func (c *Controller) gameOver() {
	c.s.state = structs.GameOver
	c.s.message = GameOverMessage
	c.s.snake.Kill()
	c.Stop()
	log.Printf("session %s: game over at %v, score %d, length %d",
		c.s.id, c.s.snake.Head(), c.s.score.Get(), c.s.snake.Len())
}

// Input handles one frontend command. While the game is over any input is the
// restart signal and is consumed by the restart.
func (c *Controller) Input(in structs.Input) {
	if c.s.state == structs.GameOver {
		c.Restart()
		return
	}
	if d, ok := in.Direction(); ok {
		c.s.snake.SetDirection(d)
	}
}

// Turn asks the snake to change heading. Ignored while the game is over.
func (c *Controller) Turn(d structs.Direction) bool {
	if c.s.state == structs.GameOver {
		return false
	}
	return c.s.snake.SetDirection(d)
}

// Restart resets the session in place and resumes ticking. Only valid after a
// game over; returns false otherwise.
func (c *Controller) Restart() bool {
	if c.s.state != structs.GameOver {
		return false
	}

	c.cancelEffects()
	c.insane.reset()
	c.s.food.Stop()

	c.s.snake.Reset(c.cfg.Origin, c.cfg.Direction, c.cfg.BaseSpeed)
	c.s.score.Reset()
	c.respawnFood()
	c.s.nextInsane = c.cfg.InsaneStep
	c.s.state = structs.Running
	c.s.message = ""
	c.s.tick = 0
	c.s.id = uuid.NewString()

	log.Printf("session %s: restarted", c.s.id)
	c.Start()
	return true
}

func (c *Controller) State() structs.State {
	return c.s.state
}

func (c *Controller) Score() int {
	return c.s.score.Get()
}

// Snake exposes the live snake to renderers and tests. Do not mutate it from
// outside the scheduler goroutine.
func (c *Controller) Snake() *snake.Snake {
	return c.s.snake
}

func (c *Controller) Food() *snake.Food {
	return c.s.food
}

// Settings returns the validated configuration.
func (c *Controller) Settings() Settings {
	return c.cfg
}

// Snapshot copies everything a renderer needs.
func (c *Controller) Snapshot() structs.Snapshot {
	sn := c.s.snake
	return structs.Snapshot{
		Session:      c.s.id,
		Tick:         c.s.tick,
		Width:        c.cfg.Width,
		Height:       c.cfg.Height,
		CellSize:     c.cfg.CellSize,
		Segments:     sn.Segments(),
		Direction:    sn.Direction().String(),
		HeadEnlarged: sn.HeadEnlarged(),
		SpeedMs:      sn.Speed().Milliseconds(),
		Food:         c.s.food.View(),
		Score:        c.s.score.Get(),
		Length:       sn.Len(),
		State:        c.s.state,
		GameOver:     c.s.state == structs.GameOver,
		Message:      c.s.message,
		Rotation:     c.insane.rotation,
		Flicker:      c.insane.flickering,
		Background:   c.insane.background,
	}
}

func (c *Controller) publish() {
	if len(c.subscribers) == 0 {
		return
	}
	snap := c.Snapshot()
	for _, fn := range c.subscribers {
		fn(snap)
	}
}
