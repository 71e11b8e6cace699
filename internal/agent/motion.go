package agent

import (
	"math"

	"github.com/udisondev/sarsim/internal/model"
)

// MoveTowardTarget advances e by its velocity along the straight line to its target.
// Inside the arrival threshold the entity holds position; the target is kept.
// Returns the distance travelled.
func MoveTowardTarget(e *model.Entity, arrivalThreshold float64) float64 {
	target, ok := e.Target()
	if !ok {
		return 0
	}

	pos := e.Position()
	dx := target.X - pos.X
	dy := target.Y - pos.Y
	distance := math.Hypot(dx, dy)

	if distance <= arrivalThreshold {
		return 0
	}

	v := e.Velocity()
	e.SetPosition(model.NewPosition(
		pos.X+dx/distance*v,
		pos.Y+dy/distance*v,
	))
	return v
}

// HasArrived reports whether e is within the arrival threshold of p.
func HasArrived(e *model.Entity, p model.Position, arrivalThreshold float64) bool {
	return e.Position().DistanceTo(p) <= arrivalThreshold
}
