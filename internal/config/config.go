package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Grid      GridConfig      `toml:"grid"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Scripting ScriptingConfig `toml:"scripting"`
	Data      DataConfig      `toml:"data"`
	Sim       SimConfig       `toml:"sim"`
	Logging   LoggingConfig   `toml:"logging"`
}

// GridConfig is read once when the grid is built.
type GridConfig struct {
	RegionSize   int32         `toml:"region_size"` // world units per region side
	MinX         int32         `toml:"min_x"`
	MinY         int32         `toml:"min_y"`
	MaxX         int32         `toml:"max_x"` // exclusive
	MaxY         int32         `toml:"max_y"` // exclusive
	TurnOnDelay  time.Duration `toml:"turn_on_delay"`
	TurnOffDelay time.Duration `toml:"turn_off_delay"`
	AlwaysOn     bool          `toml:"always_on"`
}

type SchedulerConfig struct {
	Mode     string        `toml:"mode"` // "timer" (wall clock) or "tick" (advanced by the game loop)
	TickRate time.Duration `toml:"tick_rate"`
}

type ScriptingConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type DataConfig struct {
	SpawnList string `toml:"spawn_list"`
}

type SimConfig struct {
	WanderStep     int32   `toml:"wander_step"`
	WanderChance   float64 `toml:"wander_chance"` // per player per tick (0.0-1.0)
	ReportInterval int     `toml:"report_interval"` // ticks between grid reports
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Grid.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration used when no file is given.
func Default() *Config {
	return defaults()
}

// Validate reports grid settings the region arena cannot be built from.
func (g GridConfig) Validate() error {
	switch {
	case g.RegionSize <= 0:
		return fmt.Errorf("grid.region_size must be positive, got %d", g.RegionSize)
	case g.MaxX <= g.MinX:
		return fmt.Errorf("grid.max_x (%d) must be greater than grid.min_x (%d)", g.MaxX, g.MinX)
	case g.MaxY <= g.MinY:
		return fmt.Errorf("grid.max_y (%d) must be greater than grid.min_y (%d)", g.MaxY, g.MinY)
	case g.TurnOnDelay < 0 || g.TurnOffDelay < 0:
		return fmt.Errorf("grid delays must not be negative")
	case int64(g.MinX)-int64(g.RegionSize) < math.MinInt32 ||
		int64(g.MinY)-int64(g.RegionSize) < math.MinInt32 ||
		int64(g.MaxX)+int64(g.RegionSize) > math.MaxInt32 ||
		int64(g.MaxY)+int64(g.RegionSize) > math.MaxInt32:
		return fmt.Errorf("grid extent must stay one region_size (%d) inside the int32 range", g.RegionSize)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Grid: GridConfig{
			RegionSize:   2048,
			MinX:         -131072,
			MinY:         -262144,
			MaxX:         196608,
			MaxY:         229376,
			TurnOnDelay:  1 * time.Second,
			TurnOffDelay: 90 * time.Second,
		},
		Scheduler: SchedulerConfig{
			Mode:     "timer",
			TickRate: 200 * time.Millisecond,
		},
		Scripting: ScriptingConfig{
			Enabled: false,
			Dir:     "scripts",
		},
		Data: DataConfig{
			SpawnList: "data/yaml/spawn_list.yaml",
		},
		Sim: SimConfig{
			WanderStep:     512,
			WanderChance:   0.25,
			ReportInterval: 150, // 150 ticks × 200ms = 30 seconds
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
