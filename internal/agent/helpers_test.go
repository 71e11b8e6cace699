package agent

import (
	"github.com/paulmach/orb"

	"github.com/udisondev/sarsim/internal/model"
)

// sliceIndex is a VictimIndex over a plain slice.
type sliceIndex []*model.Victim

func (idx sliceIndex) Victim(id string) (*model.Victim, bool) {
	for _, v := range idx {
		if v.ID() == id {
			return v, true
		}
	}
	return nil, false
}

func (idx sliceIndex) VictimsWithin(p model.Position, radius float64) []*model.Victim {
	var out []*model.Victim
	for _, v := range idx {
		if v.IsActive() && p.DistanceTo(v.Position()) <= radius {
			out = append(out, v)
		}
	}
	return out
}

func testRules() Rules {
	return Rules{
		Region: orb.Bound{Min: orb.Point{300, 50}, Max: orb.Point{850, 750}},
		Stations: []model.Position{
			model.NewPosition(100, 100),
			model.NewPosition(1100, 100),
			model.NewPosition(600, 400),
		},
		ArrivalThreshold:   5,
		HeadingChangeTicks: 60,
		Lanes:              10,
		PatternSpacing:     1.5,
	}
}

func newTestScout(id string, pos model.Position, lane int) *model.Scout {
	return model.NewScout(id, pos, 0, 0.375, 50, lane)
}

func newTestVictim(id string, pos model.Position) *model.Victim {
	return model.NewVictim(id, pos, 0.025, 3, 0)
}
