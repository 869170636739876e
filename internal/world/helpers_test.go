package world

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/l1jgo/worldgrid/internal/config"
	"github.com/l1jgo/worldgrid/internal/core/sched"
)

const (
	testTurnOn  = time.Second
	testTurnOff = 90 * time.Second
)

// smallGrid is a 3×3 grid of 100-unit regions: (0,0) through (2,2).
func smallGrid() config.GridConfig {
	return config.GridConfig{
		RegionSize:   100,
		MinX:         0,
		MinY:         0,
		MaxX:         300,
		MaxY:         300,
		TurnOnDelay:  testTurnOn,
		TurnOffDelay: testTurnOff,
	}
}

type transition struct {
	region  string
	active  bool
	members int
}

// recordingHooks keeps every transition in order.
type recordingHooks struct {
	mu  sync.Mutex
	log []transition
}

func (h *recordingHooks) OnRegionActivated(r *Region, members []Object) {
	h.mu.Lock()
	h.log = append(h.log, transition{r.String(), true, len(members)})
	h.mu.Unlock()
}

func (h *recordingHooks) OnRegionDeactivated(r *Region, members []Object) {
	h.mu.Lock()
	h.log = append(h.log, transition{r.String(), false, len(members)})
	h.mu.Unlock()
}

func (h *recordingHooks) count(region string, active bool) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, tr := range h.log {
		if tr.region == region && tr.active == active {
			n++
		}
	}
	return n
}

func (h *recordingHooks) total() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.log)
}

type testWorld struct {
	grid  *Grid
	clock *sched.ManualScheduler
	hooks *recordingHooks
}

func newTestWorld(t *testing.T, cfg config.GridConfig, extra ...Hooks) *testWorld {
	t.Helper()
	clock := sched.NewManualScheduler()
	hooks := &recordingHooks{}
	var h Hooks = hooks
	if len(extra) > 0 {
		h = append(MultiHooks{hooks}, extra...)
	}
	g, err := NewGrid(cfg, WithScheduler(clock), WithHooks(h))
	require.NoError(t, err)
	return &testWorld{grid: g, clock: clock, hooks: hooks}
}

func (w *testWorld) region(t *testing.T, rx, ry int32) *Region {
	t.Helper()
	r, err := w.grid.RegionAt(rx, ry)
	require.NoError(t, err)
	return r
}

func (w *testWorld) add(t *testing.T, obj Object) {
	t.Helper()
	require.NoError(t, w.grid.Add(obj))
}

func (w *testWorld) remove(t *testing.T, obj Object) {
	t.Helper()
	require.NoError(t, w.grid.Remove(obj))
}

func (w *testWorld) move(t *testing.T, e interface {
	Object
	SetLocation(Location)
}, to Location) {
	t.Helper()
	from := e.Location()
	require.NoError(t, w.grid.Relocate(e, from, to))
	e.SetLocation(to)
}

func at(x, y int32) Location { return Location{X: x, Y: y} }
