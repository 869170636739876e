package scripting

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/l1jgo/worldgrid/internal/config"
	"github.com/l1jgo/worldgrid/internal/core/sched"
	"github.com/l1jgo/worldgrid/internal/world"
)

const regionScript = `
activated = 0
deactivated = 0
last_members = 0
last_attackable = 0
last_rx = -1

function on_region_activated(region, members)
  activated = activated + 1
  last_rx = region.rx
  last_members = #members
end

function on_region_deactivated(region, members)
  deactivated = deactivated + 1
  local n = 0
  for _, m in ipairs(members) do
    if m.attackable then n = n + 1 end
  end
  last_attackable = n
end
`

func writeScript(t *testing.T, dir, sub, name, body string) {
	t.Helper()
	p := filepath.Join(dir, sub)
	require.NoError(t, os.MkdirAll(p, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(p, name), []byte(body), 0o644))
}

func TestNewEngine_LoadsScripts(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "core", "util.lua", `function double(x) return x * 2 end`)
	writeScript(t, dir, "world", "region.lua", `loaded = double(21)`)
	writeScript(t, dir, "world", "notes.txt", `this is not lua`)

	e, err := NewEngine(dir, nil)
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, 42.0, e.GlobalNumber("loaded"))
	assert.Equal(t, 1.0, e.GlobalNumber("API_VERSION"))
}

func TestNewEngine_MissingDirIsFine(t *testing.T) {
	e, err := NewEngine(filepath.Join(t.TempDir(), "absent"), nil)
	require.NoError(t, err)
	e.Close()
}

func TestNewEngine_SyntaxError(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "world", "broken.lua", `function (`)

	_, err := NewEngine(dir, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load world scripts")
}

func TestEngine_RegionHooks(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "world", "region.lua", regionScript)
	e, err := NewEngine(dir, nil)
	require.NoError(t, err)
	defer e.Close()

	clock := sched.NewManualScheduler()
	g, err := world.NewGrid(config.GridConfig{
		RegionSize:   100,
		MaxX:         100,
		MaxY:         100,
		TurnOnDelay:  time.Second,
		TurnOffDelay: time.Second,
	}, world.WithScheduler(clock), world.WithHooks(e))
	require.NoError(t, err)

	mob := world.NewMonster(2, "m", world.Location{X: 5, Y: 5})
	p := world.NewPlayer(1, "p", world.Location{X: 10, Y: 10})
	require.NoError(t, g.Add(mob))
	require.NoError(t, g.Add(p))

	assert.Equal(t, 1.0, e.GlobalNumber("activated"))
	assert.Equal(t, 2.0, e.GlobalNumber("last_members"))
	assert.Equal(t, 0.0, e.GlobalNumber("last_rx"))

	require.NoError(t, g.Remove(p))
	clock.Advance(time.Second)

	assert.Equal(t, 1.0, e.GlobalNumber("deactivated"))
	assert.Equal(t, 1.0, e.GlobalNumber("last_attackable"))
}

func TestEngine_HookErrorIsLogged(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "world", "region.lua", `function on_region_activated() error("nope") end`)
	core, logs := observer.New(zapcore.ErrorLevel)
	e, err := NewEngine(dir, zap.New(core))
	require.NoError(t, err)
	defer e.Close()

	g, err := world.NewGrid(config.GridConfig{RegionSize: 10, MaxX: 10, MaxY: 10},
		world.WithScheduler(sched.NewManualScheduler()), world.WithHooks(e))
	require.NoError(t, err)
	require.NoError(t, g.Add(world.NewPlayer(1, "p", world.Location{})))

	assert.Equal(t, 1, logs.FilterMessage("lua region hook error").Len())
}

func TestEngine_NoHandlersDefined(t *testing.T) {
	e, err := NewEngine(t.TempDir(), nil)
	require.NoError(t, err)
	defer e.Close()

	r, err := world.NewGrid(config.GridConfig{RegionSize: 10, MaxX: 10, MaxY: 10},
		world.WithScheduler(sched.NewManualScheduler()), world.WithHooks(e))
	require.NoError(t, err)
	assert.NotPanics(t, func() { _ = r.Add(world.NewPlayer(1, "p", world.Location{})) })
	assert.Equal(t, 0.0, e.GlobalNumber("x"))
}

func TestEngine_ShippedRegionScripts(t *testing.T) {
	e, err := NewEngine(filepath.Join("..", "..", "scripts"), nil)
	require.NoError(t, err)
	defer e.Close()

	clock := sched.NewManualScheduler()
	g, err := world.NewGrid(config.GridConfig{
		RegionSize:   100,
		MaxX:         300,
		MaxY:         300,
		TurnOnDelay:  time.Second,
		TurnOffDelay: time.Second,
	}, world.WithScheduler(clock), world.WithHooks(e))
	require.NoError(t, err)

	require.NoError(t, g.Add(world.NewMonster(2, "orc", world.Location{X: 50, Y: 50})))
	p := world.NewPlayer(1, "p", world.Location{X: 50, Y: 50})
	require.NoError(t, g.Add(p))
	assert.Equal(t, 1.0, e.GlobalNumber("regions_active"))
	assert.Equal(t, 1.0, e.GlobalNumber("monsters_woken"))

	clock.Advance(time.Second)
	assert.Equal(t, 4.0, e.GlobalNumber("regions_active"))

	require.NoError(t, g.Remove(p))
	clock.Advance(time.Second)
	assert.Equal(t, 0.0, e.GlobalNumber("regions_active"))
	assert.Equal(t, 1.0, e.GlobalNumber("monsters_woken"))
}
