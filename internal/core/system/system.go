package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: external movers push position changes
	PhasePreUpdate               // 1: dispatch last tick's region events
	PhaseUpdate                  // 2: simulation logic
	PhasePostUpdate              // 3: delayed region tasks fire
	PhaseOutput                  // 4: reports
)

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
