// 关于的蛇的更新
package snake

import (
	"time"

	"github.com/hoshinonyaruko/insane-snake/clock"
	"github.com/hoshinonyaruko/insane-snake/structs"
)

// DefaultDebounce is the minimum gap between two accepted direction changes.
const DefaultDebounce = 150 * time.Millisecond

// Snake owns the body, heading, tick interval and the head-size presentation flag.
type Snake struct {
	segments     []structs.Segment // 0 为蛇头
	direction    structs.Direction
	speed        time.Duration
	headEnlarged bool
	dead         bool

	clock    clock.Clock
	debounce time.Duration
	lastTurn time.Time // 上一次成功转向的时间，零值表示尚未转向
}

// New creates a one-segment snake at origin.
func New(c clock.Clock, origin structs.Segment, dir structs.Direction, speed, debounce time.Duration) *Snake {
	s := &Snake{clock: c, debounce: debounce}
	s.Reset(origin, dir, speed)
	return s
}

// Reset puts the snake back to a single segment at origin. The heading is set
// directly, without the reversal rule.
func (s *Snake) Reset(origin structs.Segment, dir structs.Direction, speed time.Duration) {
	s.segments = append(s.segments[:0], origin)
	s.direction = dir
	s.speed = speed
	s.headEnlarged = false
	s.dead = false
	s.lastTurn = time.Time{}
}

// Move advances one cell in the current direction: the new head is prepended
// and the tail dropped. Collisions are not checked here.
func (s *Snake) Move() {
	if s.dead {
		return
	}

	// 根据方向计算新头部位置
	head := s.segments[0]
	dx, dy := s.direction.Delta()
	newHead := structs.Segment{X: head.X + dx, Y: head.Y + dy}

	// 整体后移一格，丢弃最后一格
	copy(s.segments[1:], s.segments[:len(s.segments)-1])
	s.segments[0] = newHead
}

// Grow appends a copy of the tail. The copy overlaps the old tail until the
// next Move pulls the body forward.
func (s *Snake) Grow() {
	tail := s.segments[len(s.segments)-1]
	s.segments = append(s.segments, tail)
}

// CheckSelfCollision reports whether the head shares a cell with any other segment.
func (s *Snake) CheckSelfCollision() bool {
	head := s.segments[0]
	// 检查头部是否与身体的其他部分重叠
	for _, bodyPart := range s.segments[1:] {
		if bodyPart == head {
			return true
		}
	}
	return false
}

// CheckBoundaryCollision reports whether the head is outside [0,width)x[0,height).
func (s *Snake) CheckBoundaryCollision(width, height int) bool {
	head := s.segments[0]
	return head.X < 0 || head.X >= width || head.Y < 0 || head.Y >= height
}

// SetDirection changes the heading. It refuses a 180° reversal, any change
// within the debounce window of the previous accepted one, and any change on a
// dead snake. Re-selecting the current heading is a no-op and leaves the
// debounce window alone. Returns whether the heading changed.
func (s *Snake) SetDirection(d structs.Direction) bool {
	if s.dead || !d.Valid() || d == s.direction {
		return false
	}
	if d == s.direction.Opposite() {
		return false
	}
	now := s.clock.Now()
	if !s.lastTurn.IsZero() && now.Sub(s.lastTurn) < s.debounce {
		return false
	}
	s.direction = d
	s.lastTurn = now
	return true
}

func (s *Snake) Direction() structs.Direction {
	return s.direction
}

func (s *Snake) EnlargeHead() {
	s.headEnlarged = true
}

func (s *Snake) ResetHeadSize() {
	s.headEnlarged = false
}

// HeadEnlarged is read by renderers only; it has no effect on collisions.
func (s *Snake) HeadEnlarged() bool {
	return s.headEnlarged
}

func (s *Snake) SetSpeed(d time.Duration) {
	s.speed = d
}

// Speed is the current tick interval.
func (s *Snake) Speed() time.Duration {
	return s.speed
}

// Kill freezes the snake until the next Reset.
func (s *Snake) Kill() {
	s.dead = true
}

func (s *Snake) Dead() bool {
	return s.dead
}

func (s *Snake) Head() structs.Segment {
	return s.segments[0]
}

func (s *Snake) Len() int {
	return len(s.segments)
}

// Segments returns a copy of the body, head first.
func (s *Snake) Segments() []structs.Segment {
	out := make([]structs.Segment, len(s.segments))
	copy(out, s.segments)
	return out
}
