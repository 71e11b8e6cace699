package agent

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/sarsim/internal/model"
)

func TestDriftVictim_MovesAlongHeading(t *testing.T) {
	rules := testRules()
	rng := rand.New(rand.NewPCG(1, 2))
	v := model.NewVictim("victim1", model.NewPosition(500, 400), 0.025, 1, 0)

	DriftVictim(v, rules, rng)

	assert.InDelta(t, 500.025, v.Position().X, 1e-12)
	assert.InDelta(t, 400.0, v.Position().Y, 1e-12)
	assert.Equal(t, 1, v.DirectionTimer())
}

func TestDriftVictim_ReflectsOffXWall(t *testing.T) {
	rules := testRules()
	rng := rand.New(rand.NewPCG(1, 2))
	// Heading east, right at the eastern edge.
	v := model.NewVictim("victim1", model.NewPosition(850, 400), 0.025, 1, 0)

	DriftVictim(v, rules, rng)

	assert.Equal(t, 850.0, v.Position().X, "x move past the wall is rejected")
	assert.InDelta(t, math.Pi, v.Heading(), 1e-9, "heading reflects to π−θ")
}

func TestDriftVictim_ReflectsOffYWall(t *testing.T) {
	rules := testRules()
	rng := rand.New(rand.NewPCG(1, 2))
	// Heading south (+y) at the bottom edge.
	v := model.NewVictim("victim1", model.NewPosition(500, 750), 0.025, 1, math.Pi/2)

	DriftVictim(v, rules, rng)

	assert.Equal(t, 750.0, v.Position().Y)
	assert.InDelta(t, 3*math.Pi/2, v.Heading(), 1e-9, "heading reflects to −θ")
}

func TestDriftVictim_CornerReflectsBothAxes(t *testing.T) {
	rules := testRules()
	rng := rand.New(rand.NewPCG(1, 2))
	v := model.NewVictim("victim1", model.NewPosition(300, 50), 0.025, 1, 5*math.Pi/4)

	DriftVictim(v, rules, rng)

	assert.Equal(t, model.NewPosition(300, 50), v.Position())
	// π−5π/4 = −π/4, then negated: π/4.
	assert.InDelta(t, math.Pi/4, v.Heading(), 1e-9)
}

func TestDriftVictim_StaysInBounds(t *testing.T) {
	rules := testRules()
	rng := rand.New(rand.NewPCG(7, 7))

	victims := []*model.Victim{
		model.NewVictim("victim1", model.NewPosition(300, 50), 0.025, 1, 1),
		model.NewVictim("victim2", model.NewPosition(850, 750), 0.025, 1, 2),
		model.NewVictim("victim3", model.NewPosition(575, 400), 0.025, 1, 4),
	}

	for tick := range 10_000 {
		for _, v := range victims {
			DriftVictim(v, rules, rng)
			require.True(t, v.Position().Within(rules.Region), "tick %d: %s at %v left the region", tick, v.ID(), v.Position())
		}
	}
}

func TestDriftVictim_ChangesHeadingPeriodically(t *testing.T) {
	rules := testRules()
	rng := rand.New(rand.NewPCG(3, 4))
	v := model.NewVictim("victim1", model.NewPosition(575, 400), 0.025, 1, 0)

	for range 59 {
		DriftVictim(v, rules, rng)
	}
	require.Equal(t, 0.0, v.Heading(), "heading is kept until the timer fires")

	DriftVictim(v, rules, rng)
	assert.Equal(t, 0, v.DirectionTimer())
	assert.NotEqual(t, 0.0, v.Heading())
}

func TestDriftVictim_InactiveIsFrozen(t *testing.T) {
	rules := testRules()
	rng := rand.New(rand.NewPCG(1, 2))
	v := model.NewVictim("victim1", model.NewPosition(500, 400), 0.025, 1, 0)
	v.Deactivate()

	DriftVictim(v, rules, rng)
	assert.Equal(t, model.NewPosition(500, 400), v.Position())
}
