// Package ai drives the autonomous side of the simulation: a fixed-rate tick
// loop that advances every registered controller once per tick.
package ai

// Controller is advanced by the TickManager once per tick.
type Controller interface {
	// Tick runs one simulation step. It must not block.
	Tick()
}

// ControllerFunc adapts a function to Controller.
type ControllerFunc func()

func (f ControllerFunc) Tick() { f() }
