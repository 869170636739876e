package sched

import (
	"time"

	coresys "github.com/l1jgo/worldgrid/internal/core/system"
)

// TickDriver advances a ManualScheduler by the tick duration, so delayed
// region tasks run on the game loop goroutine instead of timer goroutines.
type TickDriver struct {
	clock *ManualScheduler
}

func NewTickDriver(clock *ManualScheduler) *TickDriver {
	return &TickDriver{clock: clock}
}

func (d *TickDriver) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (d *TickDriver) Update(dt time.Duration) {
	d.clock.Advance(dt)
}
