package world

import (
	"time"

	"go.uber.org/zap"
)

// Activation rules:
//
//   - A controllable object entering an inactive region activates it
//     immediately and schedules activation of its neighbours after turnOn.
//   - A controllable object leaving schedules deactivation after turnOff,
//     but only if no active region of the surrounding block still holds a
//     controllable object.
//   - A deactivation task re-checks emptiness for every block member when it
//     fires; members that regained a neighbour stay on.
//   - Scheduling replaces whatever task was pending for the region.
//
// With always_on set every region starts active and nothing is scheduled.

func (r *Region) objectAdded(obj Object) {
	if r.env.alwaysOn || !obj.Traits().Controllable() {
		return
	}
	r.startActivation()
}

func (r *Region) objectRemoved(obj Object) {
	if r.env.alwaysOn || !obj.Traits().Controllable() {
		return
	}
	if r.neighborsEmpty() {
		r.startNeighborsTask(false, r.env.turnOff)
	}
}

// startActivation turns self on first so entry feels instant; neighbours
// follow only if nobody leaves again before turnOn. The inactive check runs
// under the state lock after the object is registered.
func (r *Region) startActivation() {
	if !r.setActive(true) {
		return
	}
	r.startNeighborsTask(true, r.env.turnOn)
}

// neighborsEmpty reports whether no active region of the block, r included,
// holds a controllable object. Neighbour state is read without locks and may
// be stale; tasks re-check when they fire, under the target's state lock.
func (r *Region) neighborsEmpty() bool {
	for _, idx := range r.neighbors {
		w := &r.env.arena[idx]
		if w.active.Load() && w.hasControllable() {
			return false
		}
	}
	return true
}

func (r *Region) startNeighborsTask(activating bool, delay time.Duration) {
	r.taskMu.Lock()
	defer r.taskMu.Unlock()

	if r.task != nil {
		r.task.Cancel()
		r.task = nil
	}
	r.taskGen++
	gen := r.taskGen
	r.task = r.env.sched.Schedule(delay, func() {
		r.runNeighborsTask(gen, activating)
	})
}

func (r *Region) runNeighborsTask(gen uint64, activating bool) {
	r.taskMu.Lock()
	defer r.taskMu.Unlock()

	// A newer decision superseded this task after it had already started.
	if gen != r.taskGen {
		return
	}
	r.task = nil

	for _, idx := range r.neighbors {
		w := &r.env.arena[idx]
		if activating {
			w.setActive(true)
		} else {
			w.setActiveIf(false, w.neighborsEmpty)
		}
	}
}

// setActive performs a transition and runs the matching hook. Requests that
// do not change the state are ignored.
func (r *Region) setActive(value bool) bool {
	return r.setActiveIf(value, nil)
}

// setActiveIf is setActive guarded by cond, which is evaluated under the
// state lock. A nil cond always holds.
func (r *Region) setActiveIf(value bool, cond func() bool) bool {
	r.stateMu.Lock()
	defer r.stateMu.Unlock()

	if r.active.Load() == value {
		return false
	}
	if cond != nil && !cond() {
		return false
	}
	r.active.Store(value)

	members := r.objects.Snapshot()
	if value {
		r.env.hooks.OnRegionActivated(r, members)
		r.env.log.Debug("starting region", zap.Stringer("region", r), zap.Int("members", len(members)))
	} else {
		r.env.hooks.OnRegionDeactivated(r, members)
		r.env.log.Debug("stopping region", zap.Stringer("region", r), zap.Int("members", len(members)))
	}
	return true
}

// PendingTask reports whether a neighbour task is scheduled and not yet run.
func (r *Region) PendingTask() bool {
	r.taskMu.Lock()
	defer r.taskMu.Unlock()
	return r.task != nil
}
