package model

import (
	"math"
	"time"
)

// Victim drifts around the rescue region until a rescuer picks it up.
type Victim struct {
	Entity

	distressLevel  int
	discovered     bool
	discoveryTime  time.Time
	heading        float64
	directionTimer int
}

// NewVictim creates an undiscovered victim.
// distressLevel is clamped into 1..5.
func NewVictim(id string, pos Position, velocity float64, distressLevel int, heading float64) *Victim {
	return &Victim{
		Entity:        newEntity(id, KindVictim, pos, velocity, -1),
		distressLevel: min(max(distressLevel, 1), 5),
		heading:       NormalizeHeading(heading),
	}
}

// DistressLevel returns the cosmetic urgency, 1..5.
func (v *Victim) DistressLevel() int {
	return v.distressLevel
}

// IsDiscovered reports whether any scout has seen the victim.
func (v *Victim) IsDiscovered() bool {
	return v.discovered
}

// DiscoveryTime returns the time of first discovery, zero if undiscovered.
func (v *Victim) DiscoveryTime() time.Time {
	return v.discoveryTime
}

// Discover marks the victim discovered at the given time.
// Only the first call has an effect; it returns true in that case.
func (v *Victim) Discover(at time.Time) bool {
	if v.discovered {
		return false
	}
	v.discovered = true
	v.discoveryTime = at
	return true
}

// Heading returns the drift direction in radians, [0, 2π).
func (v *Victim) Heading() float64 {
	return v.heading
}

// SetHeading sets the drift direction; the value is normalized.
func (v *Victim) SetHeading(h float64) {
	v.heading = NormalizeHeading(h)
}

// DirectionTimer returns ticks elapsed since the last heading change.
func (v *Victim) DirectionTimer() int {
	return v.directionTimer
}

// TickDirectionTimer increments the timer and reports whether it reached every.
// The timer resets to 0 when it does.
func (v *Victim) TickDirectionTimer(every int) bool {
	v.directionTimer++
	if v.directionTimer >= every {
		v.directionTimer = 0
		return true
	}
	return false
}

// NormalizeHeading maps an angle into [0, 2π).
func NormalizeHeading(h float64) float64 {
	h = math.Mod(h, 2*math.Pi)
	if h < 0 {
		h += 2 * math.Pi
	}
	if h >= 2*math.Pi {
		return 0
	}
	return h
}
