package world

import "go.uber.org/zap"

// Hooks receive region transitions. Each real transition invokes exactly one
// call, synchronously, before the transition returns; members is the region's
// membership at that moment.
//
// Hooks run while the region's transition lock (and possibly another
// region's task lock) is held. They must not add, remove or relocate objects
// on the grid synchronously.
type Hooks interface {
	OnRegionActivated(r *Region, members []Object)
	OnRegionDeactivated(r *Region, members []Object)
}

// NopHooks ignores every transition.
type NopHooks struct{}

func (NopHooks) OnRegionActivated(*Region, []Object)   {}
func (NopHooks) OnRegionDeactivated(*Region, []Object) {}

// HookFuncs adapts plain functions to Hooks. Nil fields are skipped.
type HookFuncs struct {
	Activated   func(r *Region, members []Object)
	Deactivated func(r *Region, members []Object)
}

func (h HookFuncs) OnRegionActivated(r *Region, members []Object) {
	if h.Activated != nil {
		h.Activated(r, members)
	}
}

func (h HookFuncs) OnRegionDeactivated(r *Region, members []Object) {
	if h.Deactivated != nil {
		h.Deactivated(r, members)
	}
}

// MultiHooks fans a transition out to several hooks in order.
type MultiHooks []Hooks

func (m MultiHooks) OnRegionActivated(r *Region, members []Object) {
	for _, h := range m {
		h.OnRegionActivated(r, members)
	}
}

func (m MultiHooks) OnRegionDeactivated(r *Region, members []Object) {
	for _, h := range m {
		h.OnRegionDeactivated(r, members)
	}
}

// AISwitch turns object simulation on and off with its region.
// Activation resumes every autonomous member; deactivation pauses every
// attackable member. Static objects are left alone.
type AISwitch struct {
	log *zap.Logger
}

func NewAISwitch(log *zap.Logger) *AISwitch {
	if log == nil {
		log = zap.NewNop()
	}
	return &AISwitch{log: log}
}

func (s *AISwitch) OnRegionActivated(r *Region, members []Object) {
	c := 0
	for _, o := range members {
		if !o.Traits().Autonomous() {
			continue
		}
		if res, ok := o.(Resumer); ok {
			res.ResumeAI()
			c++
		}
	}
	s.log.Debug("region ai turned on", zap.Stringer("region", r), zap.Int("objects", c))
}

func (s *AISwitch) OnRegionDeactivated(r *Region, members []Object) {
	c := 0
	for _, o := range members {
		if !o.Traits().Attackable() {
			continue
		}
		if p, ok := o.(Pauser); ok {
			p.PauseAI()
			c++
		}
	}
	s.log.Debug("region ai turned off", zap.Stringer("region", r), zap.Int("objects", c))
}
