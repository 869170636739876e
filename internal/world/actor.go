package world

import "sync"

// Pauser is implemented by objects whose simulation stops when their region
// goes inactive.
type Pauser interface {
	PauseAI()
}

// Resumer is implemented by objects whose simulation restarts when their
// region becomes active.
type Resumer interface {
	ResumeAI()
}

// Entity is the common base of every in-world object: identity, name and a
// lock-protected location.
type Entity struct {
	id   int32
	name string

	mu  sync.RWMutex
	loc Location
}

func (e *Entity) ObjectID() int32 { return e.id }
func (e *Entity) Name() string    { return e.name }

func (e *Entity) Location() Location {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loc
}

// SetLocation only updates the object. Movers call Grid.Relocate with the
// old and new location so region membership follows.
func (e *Entity) SetLocation(loc Location) {
	e.mu.Lock()
	e.loc = loc
	e.mu.Unlock()
}

// Player is a controllable object. Its presence keeps regions active.
type Player struct {
	Entity
}

func NewPlayer(id int32, name string, loc Location) *Player {
	return &Player{Entity: Entity{id: id, name: name, loc: loc}}
}

func (p *Player) Traits() Traits { return TraitControllable }

// Monster is an autonomous, attackable object with combat state that is
// cleared whenever its region goes to sleep.
type Monster struct {
	Entity

	state        sync.Mutex
	target       int32 // object ID of the current target, 0 = none
	moving       bool
	aiRunning    bool
	regenerating bool
	hate         map[int32]int // attacker object ID → accumulated hate
}

func NewMonster(id int32, name string, loc Location) *Monster {
	return &Monster{
		Entity: Entity{id: id, name: name, loc: loc},
		hate:   make(map[int32]int),
	}
}

func (m *Monster) Traits() Traits { return TraitAutonomous | TraitAttackable }

func (m *Monster) SetTarget(id int32) {
	m.state.Lock()
	m.target = id
	m.state.Unlock()
}

func (m *Monster) StartMove() {
	m.state.Lock()
	m.moving = true
	m.state.Unlock()
}

func (m *Monster) StartAI() {
	m.state.Lock()
	m.aiRunning = true
	m.state.Unlock()
}

func (m *Monster) AddHate(attacker int32, amount int) {
	m.state.Lock()
	m.hate[attacker] += amount
	m.state.Unlock()
}

// PauseAI drops the target, stops movement, forgets every attacker and
// idles the AI task.
func (m *Monster) PauseAI() {
	m.state.Lock()
	defer m.state.Unlock()
	m.target = 0
	m.moving = false
	m.aiRunning = false
	m.regenerating = false
	clear(m.hate)
}

// ResumeAI restarts HP/MP regeneration. Targeting resumes from AI itself.
func (m *Monster) ResumeAI() {
	m.state.Lock()
	m.regenerating = true
	m.state.Unlock()
}

// MonsterState is a point-in-time copy of a monster's AI fields.
type MonsterState struct {
	Target       int32
	Moving       bool
	AIRunning    bool
	Regenerating bool
	HateEntries  int
}

func (m *Monster) State() MonsterState {
	m.state.Lock()
	defer m.state.Unlock()
	return MonsterState{
		Target:       m.target,
		Moving:       m.moving,
		AIRunning:    m.aiRunning,
		Regenerating: m.regenerating,
		HateEntries:  len(m.hate),
	}
}

// Npc is an autonomous, non-attackable object (merchants, guards standing
// around). It idles with random animations while its region is active.
type Npc struct {
	Entity

	state     sync.Mutex
	animating bool
}

func NewNpc(id int32, name string, loc Location) *Npc {
	return &Npc{Entity: Entity{id: id, name: name, loc: loc}}
}

func (n *Npc) Traits() Traits { return TraitAutonomous }

func (n *Npc) ResumeAI() {
	n.state.Lock()
	n.animating = true
	n.state.Unlock()
}

func (n *Npc) Animating() bool {
	n.state.Lock()
	defer n.state.Unlock()
	return n.animating
}

// Vehicle is a static object (boats, airships). Region switching leaves it
// untouched.
type Vehicle struct {
	Entity
}

func NewVehicle(id int32, name string, loc Location) *Vehicle {
	return &Vehicle{Entity: Entity{id: id, name: name, loc: loc}}
}

func (v *Vehicle) Traits() Traits { return 0 }
