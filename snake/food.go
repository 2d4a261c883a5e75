package snake

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/hoshinonyaruko/insane-snake/sched"
	"github.com/hoshinonyaruko/insane-snake/structs"
)

var ErrFoodConfig = errors.New("invalid food config")

// FoodConfig bounds a food item. All lengths are in grid units.
type FoodConfig struct {
	AreaWidth   float64
	AreaHeight  float64
	Width       float64 // 食物图片宽度
	Height      float64 // 食物图片高度
	MinLifetime time.Duration
	MaxLifetime time.Duration
}

// Validate checks that the food fits inside its area and that the lifetime
// range is usable.
func (c FoodConfig) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: size %.2fx%.2f must be positive", ErrFoodConfig, c.Width, c.Height)
	case c.AreaWidth < c.Width || c.AreaHeight < c.Height:
		return fmt.Errorf("%w: food %.2fx%.2f does not fit area %.2fx%.2f",
			ErrFoodConfig, c.Width, c.Height, c.AreaWidth, c.AreaHeight)
	case c.MinLifetime <= 0 || c.MaxLifetime < c.MinLifetime:
		return fmt.Errorf("%w: lifetime range %v-%v", ErrFoodConfig, c.MinLifetime, c.MaxLifetime)
	}
	return nil
}

// Food is the single food item on the board. Uneaten food wanders: it rolls a
// new type and position whenever its own lifetime timer fires.
type Food struct {
	cfg  FoodConfig
	rng  *rand.Rand
	slot *sched.Slot

	kind structs.FoodType
	x, y float64 // 左上角坐标

	onRelocate func()
}

// NewFood places a new food item and arms its lifetime timer.
func NewFood(cfg FoodConfig, s sched.Scheduler, rng *rand.Rand) (*Food, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f := &Food{
		cfg:  cfg,
		rng:  rng,
		slot: sched.NewSlot(s),
	}
	f.Relocate()
	return f, nil
}

// Relocate rolls a new type and position and re-arms the lifetime timer,
// replacing any pending one.
func (f *Food) Relocate() {
	f.kind = structs.FoodTypes[f.rng.Intn(len(structs.FoodTypes))]

	// 保证食物完整地落在区域内
	f.x = f.rng.Float64() * (f.cfg.AreaWidth - f.cfg.Width)
	f.y = f.rng.Float64() * (f.cfg.AreaHeight - f.cfg.Height)

	f.slot.Arm(f.lifetime(), func() {
		f.Relocate()
		if f.onRelocate != nil {
			f.onRelocate()
		}
	})
}

// Place pins the food to a given type and top-left corner, clamped to the
// area. The lifetime timer is left as it is.
func (f *Food) Place(kind structs.FoodType, x, y float64) {
	f.kind = kind
	f.x = math.Max(0, math.Min(x, f.cfg.AreaWidth-f.cfg.Width))
	f.y = math.Max(0, math.Min(y, f.cfg.AreaHeight-f.cfg.Height))
}

// lifetime is uniform in [MinLifetime, MaxLifetime].
func (f *Food) lifetime() time.Duration {
	span := int64(f.cfg.MaxLifetime - f.cfg.MinLifetime)
	return f.cfg.MinLifetime + time.Duration(f.rng.Int63n(span+1))
}

// OnRelocate registers fn to run after each timer-driven relocation.
func (f *Food) OnRelocate(fn func()) {
	f.onRelocate = fn
}

// Stop cancels the lifetime timer. The food stays where it is.
func (f *Food) Stop() {
	f.slot.Cancel()
}

// Active reports whether the lifetime timer is armed.
func (f *Food) Active() bool {
	return f.slot.Pending()
}

func (f *Food) Type() structs.FoodType {
	return f.kind
}

// Position is the top-left corner.
func (f *Food) Position() (x, y float64) {
	return f.x, f.y
}

func (f *Food) Size() (w, h float64) {
	return f.cfg.Width, f.cfg.Height
}

func (f *Food) Center() (x, y float64) {
	return f.x + f.cfg.Width/2, f.y + f.cfg.Height/2
}

// DistanceTo returns the distance from the food centre to a point
func (f *Food) DistanceTo(x, y float64) float64 {
	cx, cy := f.Center()
	return math.Hypot(cx-x, cy-y)
}

// View is the renderer's copy of the food.
func (f *Food) View() structs.FoodView {
	return structs.FoodView{
		Type:   f.kind,
		X:      f.x,
		Y:      f.y,
		Width:  f.cfg.Width,
		Height: f.cfg.Height,
	}
}
