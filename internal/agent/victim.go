package agent

import (
	"math"
	"math/rand/v2"

	"github.com/udisondev/sarsim/internal/model"
)

// DriftVictim advances one victim by one tick of its random walk.
//
// Every HeadingChangeTicks ticks the victim picks a new uniform heading.
// The tentative move is checked per axis: an axis that would leave the
// region is not committed and the heading is reflected off that wall
// (x: π−θ, y: −θ). Both axes are checked every tick.
func DriftVictim(v *model.Victim, rules Rules, rng *rand.Rand) {
	if !v.IsActive() {
		return
	}

	if v.TickDirectionTimer(rules.HeadingChangeTicks) {
		v.SetHeading(rng.Float64() * 2 * math.Pi)
	}

	heading := v.Heading()
	pos := v.Position()
	nextX := pos.X + math.Cos(heading)*v.Velocity()
	nextY := pos.Y + math.Sin(heading)*v.Velocity()

	region := rules.Region
	if region.Min[0] <= nextX && nextX <= region.Max[0] {
		pos.X = nextX
	} else {
		heading = math.Pi - heading
	}

	if region.Min[1] <= nextY && nextY <= region.Max[1] {
		pos.Y = nextY
	} else {
		heading = -heading
	}

	v.SetPosition(pos)
	v.SetHeading(heading)
}
