package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/l1jgo/worldgrid/internal/core/system"
	"github.com/l1jgo/worldgrid/internal/world"
)

// ReportSystem logs grid occupancy every interval ticks.
// Phase 4 (Output).
type ReportSystem struct {
	grid      *world.Grid
	interval  int
	tickCount int
	log       *zap.Logger
}

func NewReportSystem(g *world.Grid, interval int, log *zap.Logger) *ReportSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReportSystem{grid: g, interval: interval, log: log}
}

func (s *ReportSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *ReportSystem) Update(_ time.Duration) {
	if s.interval <= 0 {
		return
	}
	s.tickCount++
	if s.tickCount%s.interval != 0 {
		return
	}
	r := Summarize(s.grid)
	s.log.Info("grid report",
		zap.Int("regions", r.Regions),
		zap.Int("active", r.Active),
		zap.Int("objects", r.Objects),
		zap.Int("players", r.Players),
	)
}

// Report is a point-in-time summary of the grid.
type Report struct {
	Regions int
	Active  int
	Objects int
	Players int
}

func Summarize(g *world.Grid) Report {
	r := Report{Regions: g.RegionCount()}
	for _, reg := range g.Regions() {
		if reg.IsActive() {
			r.Active++
		}
		r.Objects += reg.Size()
		reg.ForEachObject(func(o world.Object) bool {
			if o.Traits().Controllable() {
				r.Players++
			}
			return true
		})
	}
	return r
}
