package world

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/l1jgo/worldgrid/internal/config"
	"github.com/l1jgo/worldgrid/internal/core/sched"
)

// Grid partitions the world into square regions of cfg.RegionSize units.
// Regions live in one arena indexed by (rx-minRX)*rows + (ry-minRY); the
// 3×3 neighbourhood of every region is computed once here and never again.
// There is no grid-wide lock: each region synchronises itself.
type Grid struct {
	cfg          config.GridConfig
	minRX, minRY int32
	cols, rows   int32

	regions []Region
	env     *regionEnv

	ownedSched *sched.TimerScheduler // created here when no scheduler was given
	log        *zap.Logger
}

// Option customises a Grid at construction.
type Option func(*gridOptions)

type gridOptions struct {
	sched sched.Scheduler
	hooks Hooks
	log   *zap.Logger
}

// WithScheduler sets the delayed-task facility. The scheduler must not run a
// task on the goroutine that schedules it.
func WithScheduler(s sched.Scheduler) Option {
	return func(o *gridOptions) { o.sched = s }
}

// WithHooks sets the transition hooks.
func WithHooks(h Hooks) Option {
	return func(o *gridOptions) { o.hooks = h }
}

func WithLogger(log *zap.Logger) Option {
	return func(o *gridOptions) { o.log = log }
}

// floorDiv rounds towards negative infinity so negative coordinates map to
// the region below them.
func floorDiv(v, size int32) int32 {
	q := int64(v) / int64(size)
	if v < 0 && int64(v)%int64(size) != 0 {
		q--
	}
	return int32(q)
}

// NewGrid builds every region of the configured extent and links each to
// its neighbours.
func NewGrid(cfg config.GridConfig, opts ...Option) (*Grid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	o := gridOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	if o.hooks == nil {
		o.hooks = NopHooks{}
	}

	g := &Grid{
		cfg:   cfg,
		minRX: floorDiv(cfg.MinX, cfg.RegionSize),
		minRY: floorDiv(cfg.MinY, cfg.RegionSize),
		log:   o.log,
	}
	g.cols = floorDiv(cfg.MaxX-1, cfg.RegionSize) - g.minRX + 1
	g.rows = floorDiv(cfg.MaxY-1, cfg.RegionSize) - g.minRY + 1

	if o.sched == nil {
		g.ownedSched = sched.NewTimerScheduler(o.log)
		o.sched = g.ownedSched
	}

	g.regions = make([]Region, int(g.cols)*int(g.rows))
	g.env = &regionEnv{
		arena:    g.regions,
		sched:    o.sched,
		hooks:    o.hooks,
		log:      o.log,
		turnOn:   cfg.TurnOnDelay,
		turnOff:  cfg.TurnOffDelay,
		alwaysOn: cfg.AlwaysOn,
	}

	for cx := int32(0); cx < g.cols; cx++ {
		for cy := int32(0); cy < g.rows; cy++ {
			r := &g.regions[g.index(cx, cy)]
			r.rx = g.minRX + cx
			r.ry = g.minRY + cy
			r.env = g.env
			// Default to inactive unless every region is forced on.
			r.active.Store(cfg.AlwaysOn)
		}
	}
	for cx := int32(0); cx < g.cols; cx++ {
		for cy := int32(0); cy < g.rows; cy++ {
			g.regions[g.index(cx, cy)].neighbors = g.surrounding(cx, cy)
		}
	}

	g.log.Info("world grid built",
		zap.Int32("region_size", cfg.RegionSize),
		zap.Int32("cols", g.cols),
		zap.Int32("rows", g.rows),
		zap.Int("regions", len(g.regions)),
		zap.Bool("always_on", cfg.AlwaysOn),
	)
	return g, nil
}

// index maps arena-relative column/row to the arena slot.
func (g *Grid) index(cx, cy int32) int {
	return int(cx)*int(g.rows) + int(cy)
}

// surrounding lists the arena indices of the 3×3 block around (cx, cy)
// that lie inside the grid.
func (g *Grid) surrounding(cx, cy int32) []int {
	out := make([]int, 0, 9)
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			nx, ny := cx+dx, cy+dy
			if nx < 0 || nx >= g.cols || ny < 0 || ny >= g.rows {
				continue
			}
			out = append(out, g.index(nx, ny))
		}
	}
	return out
}

// RegionFor maps world coordinates to their region.
func (g *Grid) RegionFor(x, y int32) (*Region, error) {
	if x < g.cfg.MinX || x >= g.cfg.MaxX || y < g.cfg.MinY || y >= g.cfg.MaxY {
		return nil, fmt.Errorf("%w: (%d, %d)", ErrOutOfBounds, x, y)
	}
	rx := floorDiv(x, g.cfg.RegionSize)
	ry := floorDiv(y, g.cfg.RegionSize)
	return &g.regions[g.index(rx-g.minRX, ry-g.minRY)], nil
}

// RegionAt returns the region with grid coordinates (rx, ry).
func (g *Grid) RegionAt(rx, ry int32) (*Region, error) {
	cx, cy := rx-g.minRX, ry-g.minRY
	if cx < 0 || cx >= g.cols || cy < 0 || cy >= g.rows {
		return nil, fmt.Errorf("%w: region (%d, %d)", ErrOutOfBounds, rx, ry)
	}
	return &g.regions[g.index(cx, cy)], nil
}

func (g *Grid) RegionCount() int {
	return len(g.regions)
}

// Regions returns every region in arena order.
func (g *Grid) Regions() []*Region {
	out := make([]*Region, len(g.regions))
	for i := range g.regions {
		out[i] = &g.regions[i]
	}
	return out
}

// NeighborsOf returns the precomputed 3×3 block around r, r included.
func (g *Grid) NeighborsOf(r *Region) []*Region {
	return r.Neighbors()
}

// ActiveCount returns how many regions are currently active.
func (g *Grid) ActiveCount() int {
	n := 0
	for i := range g.regions {
		if g.regions[i].IsActive() {
			n++
		}
	}
	return n
}

// Add places obj in the region of its current location.
func (g *Grid) Add(obj Object) error {
	if isNil(obj) {
		return nil
	}
	loc := obj.Location()
	r, err := g.RegionFor(loc.X, loc.Y)
	if err != nil {
		return fmt.Errorf("add object %d: %w", obj.ObjectID(), err)
	}
	r.AddEntity(obj)
	return nil
}

// Remove takes obj out of the region of its current location.
func (g *Grid) Remove(obj Object) error {
	if isNil(obj) {
		return nil
	}
	loc := obj.Location()
	r, err := g.RegionFor(loc.X, loc.Y)
	if err != nil {
		return fmt.Errorf("remove object %d: %w", obj.ObjectID(), err)
	}
	r.RemoveEntity(obj)
	return nil
}

// Relocate moves obj between regions when from and to fall in different
// ones. Both ends are resolved before anything changes, so an out-of-bounds
// destination leaves obj where it was. The object is removed from the old
// region before it is added to the new one; callers must not relocate the
// same object from two goroutines at once.
func (g *Grid) Relocate(obj Object, from, to Location) error {
	if isNil(obj) {
		return nil
	}
	src, err := g.RegionFor(from.X, from.Y)
	if err != nil {
		return fmt.Errorf("relocate object %d from: %w", obj.ObjectID(), err)
	}
	dst, err := g.RegionFor(to.X, to.Y)
	if err != nil {
		return fmt.Errorf("relocate object %d to: %w", obj.ObjectID(), err)
	}
	if src == dst {
		return nil
	}
	src.RemoveEntity(obj)
	dst.AddEntity(obj)
	return nil
}

// Close stops the scheduler the grid created for itself, if any.
func (g *Grid) Close() {
	if g.ownedSched != nil {
		g.ownedSched.Close()
	}
}
