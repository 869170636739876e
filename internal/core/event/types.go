package event

import (
	"github.com/l1jgo/worldgrid/internal/world"
)

// RegionActivated is emitted when a region switches its simulation on.
type RegionActivated struct {
	RX, RY  int32
	Members int
}

// RegionDeactivated is emitted when a region switches its simulation off.
type RegionDeactivated struct {
	RX, RY  int32
	Members int
}

// RegionHooks turns region transitions into bus events so game-loop code
// can react to them without running inside the transition itself.
type RegionHooks struct {
	bus *Bus
}

func NewRegionHooks(bus *Bus) *RegionHooks {
	return &RegionHooks{bus: bus}
}

func (h *RegionHooks) OnRegionActivated(r *world.Region, members []world.Object) {
	Emit(h.bus, RegionActivated{RX: r.RX(), RY: r.RY(), Members: len(members)})
}

func (h *RegionHooks) OnRegionDeactivated(r *world.Region, members []world.Object) {
	Emit(h.bus, RegionDeactivated{RX: r.RX(), RY: r.RY(), Members: len(members)})
}
