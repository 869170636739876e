package world

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/worldgrid/internal/core/sched"
)

// regionEnv is shared by every region of one grid.
type regionEnv struct {
	arena    []Region
	sched    sched.Scheduler
	hooks    Hooks
	log      *zap.Logger
	turnOn   time.Duration
	turnOff  time.Duration
	alwaysOn bool
}

// Region is one grid cell. It lives in the grid's arena for the lifetime of
// the process and must not be copied.
type Region struct {
	rx, ry int32
	env    *regionEnv

	// arena indices of the 3×3 block around this region, self included.
	// Set once while the grid is built and never changed.
	neighbors []int

	objects Registry
	active  atomic.Bool

	// stateMu serialises transitions so hooks see them in order.
	stateMu sync.Mutex

	// taskMu guards the pending neighbour task. taskGen identifies the most
	// recently scheduled task; anything older is stale.
	taskMu  sync.Mutex
	task    sched.Handle
	taskGen uint64
}

func (r *Region) RX() int32 { return r.rx }
func (r *Region) RY() int32 { return r.ry }

func (r *Region) String() string {
	return fmt.Sprintf("(%d, %d)", r.rx, r.ry)
}

func (r *Region) IsActive() bool {
	return r.active.Load()
}

// AddEntity registers obj and, for a controllable object entering an
// inactive region, activates the region at once. Nil is a no-op.
func (r *Region) AddEntity(obj Object) {
	if isNil(obj) {
		return
	}
	r.objects.Add(obj)
	r.objectAdded(obj)
}

// RemoveEntity unregisters obj. Removing an absent object does nothing,
// including no deactivation check.
func (r *Region) RemoveEntity(obj Object) {
	if isNil(obj) {
		return
	}
	if !r.objects.Remove(obj) {
		return
	}
	r.objectRemoved(obj)
}

// FindByID looks the object up in this region only.
func (r *Region) FindByID(id int32) Object {
	return r.objects.Get(id)
}

func (r *Region) Contains(id int32) bool {
	return r.objects.Contains(id)
}

func (r *Region) Size() int {
	return r.objects.Size()
}

// Snapshot returns the current members; the slice must not be modified.
func (r *Region) Snapshot() []Object {
	return r.objects.Snapshot()
}

// ForEachObject iterates this region's members until fn returns false.
func (r *Region) ForEachObject(fn func(Object) bool) {
	r.objects.ForEach(fn)
}

// NeighborIndices returns the arena indices of the surrounding block.
// The slice is shared and must not be modified.
func (r *Region) NeighborIndices() []int {
	return r.neighbors
}

// Neighbors returns the surrounding 3×3 block, self included.
func (r *Region) Neighbors() []*Region {
	out := make([]*Region, len(r.neighbors))
	for i, idx := range r.neighbors {
		out[i] = &r.env.arena[idx]
	}
	return out
}

// ForEachNeighbor visits the surrounding block until fn returns false.
func (r *Region) ForEachNeighbor(fn func(*Region) bool) {
	for _, idx := range r.neighbors {
		if !fn(&r.env.arena[idx]) {
			return
		}
	}
}

// IsSurrounding reports whether other is within one region of r on both
// axes (r itself included).
func (r *Region) IsSurrounding(other *Region) bool {
	if other == nil {
		return false
	}
	return r.rx >= other.rx-1 && r.rx <= other.rx+1 &&
		r.ry >= other.ry-1 && r.ry <= other.ry+1
}

// hasControllable reports whether any member is controllable.
func (r *Region) hasControllable() bool {
	found := false
	r.objects.ForEach(func(o Object) bool {
		if o.Traits().Controllable() {
			found = true
			return false
		}
		return true
	})
	return found
}
