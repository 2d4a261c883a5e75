package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hoshinonyaruko/insane-snake/game"
)

var ErrInvalidConfig = errors.New("invalid config")

// AppConfig holds the structure of the configuration
type AppConfig struct {
	SelfPath  string `json:"selfpath"`
	Port      string `json:"port"`
	Blocksize int    `json:"blocksize"` // 每格像素
	FoodsDir  string `json:"foods_dir"`
	StaticDir string `json:"static_dir"`

	Width  int `json:"width"`
	Height int `json:"height"`

	BaseSpeedMs int `json:"base_speed_ms"`
	FastSpeedMs int `json:"fast_speed_ms"`
	EffectMs    int `json:"effect_ms"`
	DebounceMs  int `json:"debounce_ms"`

	FoodMinLifeMs int `json:"food_min_life_ms"`
	FoodMaxLifeMs int `json:"food_max_life_ms"`

	InsaneStep int `json:"insane_step"`

	// Seed 为 0 时使用当前时间
	Seed int64 `json:"seed"`
}

// Default returns the values written to a fresh config file.
func Default() *AppConfig {
	s := game.DefaultSettings()
	return &AppConfig{
		SelfPath:      "127.0.0.1:38870",
		Port:          "38870",
		Blocksize:     s.CellSize,
		FoodsDir:      "./foods",
		StaticDir:     "./static",
		Width:         s.Width,
		Height:        s.Height,
		BaseSpeedMs:   int(s.BaseSpeed / time.Millisecond),
		FastSpeedMs:   int(s.FastSpeed / time.Millisecond),
		EffectMs:      int(s.EffectDuration / time.Millisecond),
		DebounceMs:    int(s.Debounce / time.Millisecond),
		FoodMinLifeMs: int(s.FoodMinLife / time.Millisecond),
		FoodMaxLifeMs: int(s.FoodMaxLife / time.Millisecond),
		InsaneStep:    s.InsaneStep,
	}
}

// LoadConfig reads filePath over the defaults. A missing file is created with
// the defaults.
func LoadConfig(filePath string) (*AppConfig, error) {
	cfg := Default()
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		if err := cfg.Save(filePath); err != nil {
			return nil, err
		}
		return cfg, cfg.Validate()
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", filePath, err)
	}
	return cfg, cfg.Validate()
}

// Save writes the config as indented JSON.
func (c *AppConfig) Save(filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Validate checks the server fields and then the game settings derived from
// the config.
func (c *AppConfig) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("%w: empty port", ErrInvalidConfig)
	}
	if c.FoodsDir == "" || c.StaticDir == "" {
		return fmt.Errorf("%w: foods_dir and static_dir are required", ErrInvalidConfig)
	}
	if err := c.Settings().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Settings converts the millisecond fields into game settings. Values the
// file does not carry keep their defaults.
func (c *AppConfig) Settings() game.Settings {
	s := game.DefaultSettings()
	s.Width = c.Width
	s.Height = c.Height
	s.CellSize = c.Blocksize
	s.BaseSpeed = ms(c.BaseSpeedMs)
	s.FastSpeed = ms(c.FastSpeedMs)
	s.EffectDuration = ms(c.EffectMs)
	s.Debounce = ms(c.DebounceMs)
	s.FoodMinLife = ms(c.FoodMinLifeMs)
	s.FoodMaxLife = ms(c.FoodMaxLifeMs)
	s.InsaneStep = c.InsaneStep
	return s
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
