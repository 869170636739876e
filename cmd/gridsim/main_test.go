package main

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/l1jgo/worldgrid/internal/config"
	"github.com/l1jgo/worldgrid/internal/core/sched"
	"github.com/l1jgo/worldgrid/internal/data"
	"github.com/l1jgo/worldgrid/internal/system"
	"github.com/l1jgo/worldgrid/internal/world"
)

func TestNewLogger_Levels(t *testing.T) {
	log, err := newLogger(config.LoggingConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = newLogger(config.LoggingConfig{Level: "bogus", Format: "console"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel), "unknown level falls back to info")
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestNewScheduler_Modes(t *testing.T) {
	s, tick, err := newScheduler(config.SchedulerConfig{Mode: "timer"}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, tick)
	ts, ok := s.(*sched.TimerScheduler)
	require.True(t, ok)
	ts.Close()

	s, tick, err = newScheduler(config.SchedulerConfig{Mode: "tick"}, zap.NewNop())
	require.NoError(t, err)
	assert.Same(t, tick, s)

	_, _, err = newScheduler(config.SchedulerConfig{Mode: "cron"}, zap.NewNop())
	assert.Error(t, err)
}

func TestSpawnAll(t *testing.T) {
	clock := sched.NewManualScheduler()
	g, err := world.NewGrid(config.GridConfig{
		RegionSize:   100,
		MaxX:         300,
		MaxY:         300,
		TurnOnDelay:  time.Second,
		TurnOffDelay: time.Second,
	}, world.WithScheduler(clock))
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(3))
	wander := system.NewWanderSystem(g, 10, 1, rng, nil)
	players, others := spawnAll(g, []data.SpawnEntry{
		{Name: "hero", Kind: data.KindPlayer, X: 50, Y: 50, Count: 2},
		{Name: "orc", Kind: data.KindMonster, X: 150, Y: 150, Count: 3},
		{Name: "lost", Kind: data.KindNpc, X: 900, Y: 900, Count: 1},
	}, wander, rng, zap.NewNop())

	assert.Equal(t, 2, players)
	assert.Equal(t, 3, others, "out-of-world spawns are skipped")
	assert.Equal(t, 5, system.Summarize(g).Objects)
}
