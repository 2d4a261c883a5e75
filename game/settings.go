package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/hoshinonyaruko/insane-snake/snake"
	"github.com/hoshinonyaruko/insane-snake/structs"
)

var ErrInvalidSettings = errors.New("invalid game settings")

const GameOverMessage = "Game Over! Press any key to restart."

// Settings are the tuning values of one game session.
type Settings struct {
	Width    int // 地图宽度（格子）
	Height   int // 地图高度（格子）
	CellSize int // 仅供渲染器换算像素

	Origin    structs.Segment
	Direction structs.Direction

	BaseSpeed      time.Duration // 正常速度
	FastSpeed      time.Duration // 蓝苹果加速后的速度
	EffectDuration time.Duration
	Debounce       time.Duration

	FoodWidth   float64 // grid units
	FoodHeight  float64
	FoodMinLife time.Duration
	FoodMaxLife time.Duration

	InsaneStep      int
	FlickerSteps    int
	FlickerInterval time.Duration
	FlickerDuration time.Duration
}

// DefaultSettings mirrors the classic board: 30x20 cells of 20px, a 30x35px
// apple, 250ms baseline and 100ms boost.
func DefaultSettings() Settings {
	return Settings{
		Width:           30,
		Height:          20,
		CellSize:        20,
		Origin:          structs.Segment{X: 5, Y: 5},
		Direction:       structs.Right,
		BaseSpeed:       250 * time.Millisecond,
		FastSpeed:       100 * time.Millisecond,
		EffectDuration:  5 * time.Second,
		Debounce:        snake.DefaultDebounce,
		FoodWidth:       1.5,
		FoodHeight:      1.75,
		FoodMinLife:     4 * time.Second,
		FoodMaxLife:     8 * time.Second,
		InsaneStep:      10,
		FlickerSteps:    10,
		FlickerInterval: 200 * time.Millisecond,
		FlickerDuration: 2 * time.Second,
	}
}

// Validate rejects settings the simulation cannot run with.
func (s Settings) Validate() error {
	switch {
	case s.Width <= 0 || s.Height <= 0:
		return fmt.Errorf("%w: grid %dx%d must be positive", ErrInvalidSettings, s.Width, s.Height)
	case s.CellSize <= 0:
		return fmt.Errorf("%w: cell size %d must be positive", ErrInvalidSettings, s.CellSize)
	case s.Origin.X < 0 || s.Origin.X >= s.Width || s.Origin.Y < 0 || s.Origin.Y >= s.Height:
		return fmt.Errorf("%w: origin %v outside %dx%d grid", ErrInvalidSettings, s.Origin, s.Width, s.Height)
	case !s.Direction.Valid():
		return fmt.Errorf("%w: start direction %v", ErrInvalidSettings, s.Direction)
	case s.BaseSpeed <= 0 || s.FastSpeed <= 0:
		return fmt.Errorf("%w: speeds must be positive", ErrInvalidSettings)
	case s.EffectDuration <= 0:
		return fmt.Errorf("%w: effect duration must be positive", ErrInvalidSettings)
	case s.Debounce < 0:
		return fmt.Errorf("%w: negative debounce", ErrInvalidSettings)
	case s.InsaneStep <= 0:
		return fmt.Errorf("%w: insane step must be positive", ErrInvalidSettings)
	case s.FlickerSteps <= 0 || s.FlickerInterval <= 0 || s.FlickerDuration <= 0:
		return fmt.Errorf("%w: flicker timing must be positive", ErrInvalidSettings)
	}
	if err := s.foodConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return nil
}

func (s Settings) foodConfig() snake.FoodConfig {
	return snake.FoodConfig{
		AreaWidth:   float64(s.Width),
		AreaHeight:  float64(s.Height),
		Width:       s.FoodWidth,
		Height:      s.FoodHeight,
		MinLifetime: s.FoodMinLife,
		MaxLifetime: s.FoodMaxLife,
	}
}
