package structs

import (
	"fmt"
	"strings"
)

// Segment 描述网格上的一个格子。两个 Segment 坐标相同即相等。
type Segment struct {
	X int `json:"x"` // X坐标
	Y int `json:"y"` // Y坐标
}

// Direction is the heading of the snake.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

var directionNames = [...]string{"up", "down", "left", "right"}

// String returns the lowercase name used by the HTTP and websocket adapters.
func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// Valid reports whether d is one of the four headings.
func (d Direction) Valid() bool {
	return d >= Up && d <= Right
}

// Opposite returns the 180° reversal of d.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

// Delta returns the one-cell offset for d. Y grows downwards.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	default:
		return 1, 0
	}
}

// ParseDirection accepts "up", "down", "left", "right" in any case.
func ParseDirection(s string) (Direction, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range directionNames {
		if n == name {
			return Direction(i), nil
		}
	}
	return 0, fmt.Errorf("invalid direction '%s' provided", s)
}

// FoodType 食物类型
type FoodType int

const (
	FoodPlain   FoodType = iota // 红苹果，无效果
	FoodSpeed                   // 蓝苹果，临时加速
	FoodEnlarge                 // 绿苹果，临时放大蛇头
)

// FoodTypes lists every food type in roll order.
var FoodTypes = []FoodType{FoodPlain, FoodSpeed, FoodEnlarge}

var foodTypeNames = [...]string{"red", "blue", "green"}

func (t FoodType) String() string {
	if t < FoodPlain || t > FoodEnlarge {
		return fmt.Sprintf("FoodType(%d)", int(t))
	}
	return foodTypeNames[t]
}

// MarshalText keeps snapshots readable on the wire.
func (t FoodType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (t *FoodType) UnmarshalText(b []byte) error {
	ft, ok := ParseFoodType(string(b))
	if !ok {
		return fmt.Errorf("unknown food type %q", b)
	}
	*t = ft
	return nil
}

// ParseFoodType maps a sprite base name ("red", "blue", "green") back to its type.
func ParseFoodType(s string) (FoodType, bool) {
	for i, n := range foodTypeNames {
		if n == s {
			return FoodType(i), true
		}
	}
	return 0, false
}

// Input is a discrete command delivered by a frontend.
type Input int

const (
	InputUp Input = iota
	InputDown
	InputLeft
	InputRight
	InputOther // any other key; only meaningful as the restart signal
)

// InputFor converts a heading into the matching input command.
func InputFor(d Direction) Input {
	return Input(d)
}

// Direction returns the heading carried by the input, if any.
func (in Input) Direction() (Direction, bool) {
	if in >= InputUp && in <= InputRight {
		return Direction(in), true
	}
	return 0, false
}

// ParseInput accepts a direction name; anything else is InputOther.
func ParseInput(s string) Input {
	if d, err := ParseDirection(s); err == nil {
		return InputFor(d)
	}
	return InputOther
}

// State of the game session.
type State int

const (
	Running State = iota
	GameOver
)

func (s State) String() string {
	if s == GameOver {
		return "game_over"
	}
	return "running"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "running":
		*s = Running
	case "game_over":
		*s = GameOver
	default:
		return fmt.Errorf("unknown state %q", b)
	}
	return nil
}

// RGB is an opaque background colour.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// FoodView 描述渲染器需要的食物信息，坐标单位为格子。
type FoodView struct {
	Type   FoodType `json:"type"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
}

// Snapshot is everything a renderer needs to draw one frame.
type Snapshot struct {
	Session      string    `json:"session"`
	Tick         uint64    `json:"tick"`
	Width        int       `json:"width"`     // 地图宽度（格子）
	Height       int       `json:"height"`    // 地图高度（格子）
	CellSize     int       `json:"cell_size"` // 每个格子的像素大小，仅用于绘图
	Segments     []Segment `json:"segments"`  // 蛇身，0 为蛇头
	Direction    string    `json:"direction"`
	HeadEnlarged bool      `json:"head_enlarged"`
	SpeedMs      int64     `json:"speed_ms"`
	Food         FoodView  `json:"food"`
	Score        int       `json:"score"`
	Length       int       `json:"length"`
	State        State     `json:"state"`
	GameOver     bool      `json:"game_over"`
	Message      string    `json:"message,omitempty"`
	Rotation     int       `json:"rotation"` // 0/90/180/270
	Flicker      bool      `json:"flicker"`
	Background   RGB       `json:"background"`
}
