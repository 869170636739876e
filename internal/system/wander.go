package system

import (
	"errors"
	"math/rand"
	"time"

	"go.uber.org/zap"

	coresys "github.com/l1jgo/worldgrid/internal/core/system"
	"github.com/l1jgo/worldgrid/internal/world"
)

// Mover is an object whose position the wander system may change.
type Mover interface {
	world.Object
	SetLocation(world.Location)
}

// WanderSystem walks objects around at random, standing in for the
// movement handler of a full server. Each tick every mover steps with
// probability chance, by up to step units on each axis. Steps that would
// leave the world are dropped.
// Phase 0 (Input): position changes land before anything reads the grid.
type WanderSystem struct {
	grid   *world.Grid
	movers []Mover
	step   int32
	chance float64
	rng    *rand.Rand
	log    *zap.Logger

	moves    int
	rejected int
}

func NewWanderSystem(g *world.Grid, step int32, chance float64, rng *rand.Rand, log *zap.Logger) *WanderSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &WanderSystem{grid: g, step: step, chance: chance, rng: rng, log: log}
}

func (s *WanderSystem) Phase() coresys.Phase { return coresys.PhaseInput }

// Track adds an object to the wandering set.
func (s *WanderSystem) Track(m Mover) {
	s.movers = append(s.movers, m)
}

func (s *WanderSystem) Update(_ time.Duration) {
	if s.step <= 0 {
		return
	}
	for _, m := range s.movers {
		if s.rng.Float64() >= s.chance {
			continue
		}
		from := m.Location()
		to := from
		to.X += s.rng.Int31n(2*s.step+1) - s.step
		to.Y += s.rng.Int31n(2*s.step+1) - s.step

		if err := s.grid.Relocate(m, from, to); err != nil {
			if errors.Is(err, world.ErrOutOfBounds) {
				s.rejected++
				continue
			}
			s.log.Warn("relocate failed", zap.Int32("object", m.ObjectID()), zap.Error(err))
			continue
		}
		m.SetLocation(to)
		s.moves++
	}
}

// Stats returns accepted and rejected moves so far.
func (s *WanderSystem) Stats() (moves, rejected int) {
	return s.moves, s.rejected
}
