package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/sarsim/internal/model"
)

func TestMoveTowardTarget_NoTarget(t *testing.T) {
	s := newTestScout("uav1", model.NewPosition(100, 100), 0)

	moved := MoveTowardTarget(&s.Entity, 5)
	assert.Zero(t, moved)
	assert.Equal(t, model.NewPosition(100, 100), s.Position())
}

func TestMoveTowardTarget_ApproachesByVelocity(t *testing.T) {
	s := newTestScout("uav1", model.NewPosition(100, 100), 0)
	target := model.NewPosition(500, 300)
	s.SetTarget(target)

	prev := s.Position().DistanceTo(target)
	for prev > 5 {
		moved := MoveTowardTarget(&s.Entity, 5)
		require.Equal(t, 0.375, moved)

		d := s.Position().DistanceTo(target)
		require.InDelta(t, prev-0.375, d, 1e-9, "each tick closes the gap by exactly the velocity")
		prev = d
	}

	// Inside the arrival threshold the scout holds position and keeps its target.
	held := s.Position()
	for range 10 {
		assert.Zero(t, MoveTowardTarget(&s.Entity, 5))
	}
	assert.Equal(t, held, s.Position())
	_, ok := s.Target()
	assert.True(t, ok, "arrival does not clear the target")
}

func TestHasArrived(t *testing.T) {
	r := model.NewRescuer("boat1", model.NewPosition(100, 104), 0, 0.375, 30, 5)
	assert.True(t, HasArrived(&r.Entity, model.NewPosition(100, 100), 5))
	assert.False(t, HasArrived(&r.Entity, model.NewPosition(100, 90), 5))
}
