package model

// Entity: общая запись для всех объектов симуляции (scout, rescuer, victim).
// Не потокобезопасна: доступ сериализуется владельцем (World).
type Entity struct {
	id          string
	kind        Kind
	position    Position
	velocity    float64
	active      bool
	state       AgentState
	target      Position
	hasTarget   bool
	homeStation int
}

func newEntity(id string, kind Kind, pos Position, velocity float64, homeStation int) Entity {
	return Entity{
		id:          id,
		kind:        kind,
		position:    pos,
		velocity:    velocity,
		active:      true,
		state:       StateIdle,
		homeStation: homeStation,
	}
}

// ID возвращает уникальный идентификатор (immutable после создания).
func (e *Entity) ID() string {
	return e.id
}

// Kind returns the entity variant.
func (e *Entity) Kind() Kind {
	return e.kind
}

// Position возвращает копию текущих координат.
func (e *Entity) Position() Position {
	return e.position
}

// SetPosition moves the entity without any motion rules applied.
func (e *Entity) SetPosition(p Position) {
	e.position = p
}

// Velocity returns the speed in units per tick.
func (e *Entity) Velocity() float64 {
	return e.velocity
}

// IsActive reports whether the entity still takes part in the simulation.
func (e *Entity) IsActive() bool {
	return e.active
}

// Deactivate removes the entity from the simulation.
// Returns false if it was already inactive; active never flips back.
func (e *Entity) Deactivate() bool {
	if !e.active {
		return false
	}
	e.active = false
	return true
}

// State returns the current FSM state.
func (e *Entity) State() AgentState {
	return e.state
}

// SetState sets the FSM state.
func (e *Entity) SetState(s AgentState) {
	e.state = s
}

// Target returns the point the entity moves toward.
// ok is false when the entity is stationary.
func (e *Entity) Target() (target Position, ok bool) {
	return e.target, e.hasTarget
}

// SetTarget points the entity at p.
func (e *Entity) SetTarget(p Position) {
	e.target = p
	e.hasTarget = true
}

// ClearTarget makes the entity stationary.
func (e *Entity) ClearTarget() {
	e.target = Position{}
	e.hasTarget = false
}

// HomeStation returns the index of the entity's station.
func (e *Entity) HomeStation() int {
	return e.homeStation
}

// Agent is a controllable entity: *Scout or *Rescuer.
// The set is closed; dispatch with a type switch.
type Agent interface {
	Base() *Entity
	sealedAgent()
}
