package main

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/l1jgo/worldgrid/internal/config"
	"github.com/l1jgo/worldgrid/internal/core/event"
	"github.com/l1jgo/worldgrid/internal/core/sched"
	coresys "github.com/l1jgo/worldgrid/internal/core/system"
	"github.com/l1jgo/worldgrid/internal/data"
	"github.com/l1jgo/worldgrid/internal/scripting"
	"github.com/l1jgo/worldgrid/internal/system"
	"github.com/l1jgo/worldgrid/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Main simulation logic ─────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("GRIDSIM_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if errors.Is(err, os.ErrNotExist) {
		cfg, cfgPath = config.Default(), "(built-in defaults)"
	} else if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfgPath)

	// 3. Scheduler, hooks and grid
	printSection("grid")

	clock, tickClock, err := newScheduler(cfg.Scheduler, log)
	if err != nil {
		return err
	}

	bus := event.NewBus()
	hooks := world.MultiHooks{world.NewAISwitch(log), event.NewRegionHooks(bus)}

	var luaEngine *scripting.Engine
	if cfg.Scripting.Enabled {
		luaEngine, err = scripting.NewEngine(cfg.Scripting.Dir, log)
		if err != nil {
			return fmt.Errorf("lua engine: %w", err)
		}
		defer luaEngine.Close()
		hooks = append(hooks, luaEngine)
		printOK("lua scripts loaded")
	}

	grid, err := world.NewGrid(cfg.Grid,
		world.WithScheduler(clock),
		world.WithHooks(hooks),
		world.WithLogger(log),
	)
	if err != nil {
		return fmt.Errorf("world grid: %w", err)
	}
	defer grid.Close()
	if ts, ok := clock.(*sched.TimerScheduler); ok {
		defer ts.Close()
	}
	printStat("regions", grid.RegionCount())
	printStat("region size", int(cfg.Grid.RegionSize))
	fmt.Println()

	// 4. Spawn objects
	printSection("spawns")

	spawnList, err := data.LoadSpawnList(cfg.Data.SpawnList)
	if err != nil {
		return fmt.Errorf("load spawn list: %w", err)
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	wander := system.NewWanderSystem(grid, cfg.Sim.WanderStep, cfg.Sim.WanderChance, rng, log)
	players, others := spawnAll(grid, spawnList, wander, rng, log)
	printStat("players", players)
	printStat("other objects", others)
	fmt.Println()

	// 5. Systems
	event.Subscribe(bus, func(ev event.RegionActivated) {
		log.Debug("region activated", zap.Int32("rx", ev.RX), zap.Int32("ry", ev.RY), zap.Int("members", ev.Members))
	})
	event.Subscribe(bus, func(ev event.RegionDeactivated) {
		log.Debug("region deactivated", zap.Int32("rx", ev.RX), zap.Int32("ry", ev.RY), zap.Int("members", ev.Members))
	})

	runner := coresys.NewRunner()
	runner.Register(wander)
	runner.Register(system.NewEventDispatchSystem(bus))
	if tickClock != nil {
		runner.Register(sched.NewTickDriver(tickClock))
	}
	runner.Register(system.NewReportSystem(grid, cfg.Sim.ReportInterval, log))
	printStat("systems", runner.Len())

	// 6. Start game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Scheduler.TickRate)
	defer ticker.Stop()

	printSection("ready")
	printReady(fmt.Sprintf("game loop started (tick: %s, scheduler: %s)", cfg.Scheduler.TickRate, cfg.Scheduler.Mode))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Scheduler.TickRate)
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			r := system.Summarize(grid)
			moves, rejected := wander.Stats()
			log.Info("simulation stopped",
				zap.Int("active_regions", r.Active),
				zap.Int("objects", r.Objects),
				zap.Int("moves", moves),
				zap.Int("rejected_moves", rejected),
			)
			if luaEngine != nil {
				log.Info("lua region counters",
					zap.Float64("regions_active", luaEngine.GlobalNumber("regions_active")),
					zap.Float64("monsters_woken", luaEngine.GlobalNumber("monsters_woken")),
				)
			}
			return nil
		}
	}
}

// newScheduler picks the delayed-task facility. In tick mode the returned
// ManualScheduler must be driven by a TickDriver.
func newScheduler(cfg config.SchedulerConfig, log *zap.Logger) (sched.Scheduler, *sched.ManualScheduler, error) {
	switch cfg.Mode {
	case "", "timer":
		return sched.NewTimerScheduler(log), nil, nil
	case "tick":
		m := sched.NewManualScheduler()
		return m, m, nil
	default:
		return nil, nil, fmt.Errorf("unknown scheduler mode %q", cfg.Mode)
	}
}

var nextObjectID atomic.Int32

// spawnAll places every spawn entry on the grid. Players are handed to the
// wander system. Entries outside the world are logged and skipped.
func spawnAll(g *world.Grid, spawns []data.SpawnEntry, wander *system.WanderSystem, rng *rand.Rand, log *zap.Logger) (players, others int) {
	next := func() int32 { return nextObjectID.Add(1) }
	for _, s := range spawns {
		for _, obj := range s.Build(next, rng) {
			if err := g.Add(obj); err != nil {
				log.Warn("spawn skipped", zap.String("name", s.Name), zap.Error(err))
				continue
			}
			if p, ok := obj.(*world.Player); ok {
				wander.Track(p)
				players++
				continue
			}
			others++
		}
	}
	return players, others
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
