package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/sarsim/internal/model"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestStartScouting(t *testing.T) {
	rules := testRules()
	s := newTestScout("uav1", model.NewPosition(100, 100), 0)

	require.NoError(t, StartScouting(s, rules))

	assert.Equal(t, model.StateScouting, s.State())
	require.True(t, s.HasScanPattern())
	assert.Equal(t, 0, s.PatternIndex())

	target, ok := s.Target()
	require.True(t, ok)
	assert.Equal(t, model.NewPosition(300, 50), target, "lane 0 starts at the region's top-left corner")
}

func TestStartScouting_PatternGeneratedOnce(t *testing.T) {
	rules := testRules()
	s := newTestScout("uav3", model.NewPosition(100, 100), 2)

	require.NoError(t, StartScouting(s, rules))
	first := s.ScanPattern()

	s.AdvancePattern()
	require.NoError(t, StopMonitoring(s, rules))
	require.NoError(t, Return(s, rules))
	require.NoError(t, StartScouting(s, rules))

	assert.Same(t, &first[0], &s.ScanPattern()[0], "pattern must be reused, not regenerated")
	assert.Equal(t, 0, s.PatternIndex(), "scout command resets the cursor")
}

func TestStepScout_AlwaysHasTargetWhileScouting(t *testing.T) {
	rules := testRules()
	s := newTestScout("uav1", model.NewPosition(100, 100), 0)
	require.NoError(t, StartScouting(s, rules))

	for tick := range 2000 {
		s.ClearTarget()
		StepScout(s, sliceIndex{}, rules, testNow)
		_, ok := s.Target()
		require.True(t, ok, "tick %d: scouting scout has no target", tick)
	}
}

func TestStepScout_AdvancesCursor(t *testing.T) {
	rules := testRules()
	s := newTestScout("uav1", model.NewPosition(300, 50), 0)
	require.NoError(t, StartScouting(s, rules))

	StepScout(s, sliceIndex{}, rules, testNow)

	assert.Equal(t, 1, s.PatternIndex())
	target, _ := s.Target()
	assert.Equal(t, model.NewPosition(300, 125), target)
	assert.InDelta(t, 50.375, s.Position().Y, 1e-9)
}

func TestStepScout_CursorWraps(t *testing.T) {
	rules := testRules()
	s := newTestScout("uav1", model.NewPosition(100, 100), 0)
	require.NoError(t, StartScouting(s, rules))

	last := len(s.ScanPattern()) - 1
	for range last {
		s.AdvancePattern()
	}
	require.Equal(t, last, s.PatternIndex())
	s.SetPosition(s.ScanPattern()[last])

	StepScout(s, sliceIndex{}, rules, testNow)

	assert.Equal(t, 0, s.PatternIndex(), "sweep repeats from the start")
	target, _ := s.Target()
	assert.Equal(t, s.ScanPattern()[0], target)
}

func TestStepScout_DetectsAndFollowsFirstVictim(t *testing.T) {
	rules := testRules()
	s := newTestScout("uav1", model.NewPosition(500, 400), 0)
	require.NoError(t, StartScouting(s, rules))
	s.SetPosition(model.NewPosition(500, 400))

	near := newTestVictim("victim1", model.NewPosition(520, 400))
	alsoNear := newTestVictim("victim2", model.NewPosition(480, 400))
	far := newTestVictim("victim3", model.NewPosition(700, 400))

	out := StepScout(s, sliceIndex{near, alsoNear, far}, rules, testNow)

	assert.True(t, near.IsDiscovered())
	assert.True(t, alsoNear.IsDiscovered(), "every victim in range is discovered")
	assert.False(t, far.IsDiscovered())
	assert.Equal(t, testNow, near.DiscoveryTime())

	assert.Len(t, out.Discovered, 2)
	require.NotNil(t, out.Followed)
	assert.Equal(t, "victim1", out.Followed.ID(), "only the first detection is bound")

	assert.Equal(t, model.StateMonitoring, s.State())
	id, ok := s.FollowingVictim()
	require.True(t, ok)
	assert.Equal(t, "victim1", id)
	assert.InDelta(t, 500.375, s.Position().X, 1e-9, "scout moves toward the bound victim")
}

func TestStepScout_IgnoresDiscoveredAndInactiveVictims(t *testing.T) {
	rules := testRules()
	s := newTestScout("uav1", model.NewPosition(500, 400), 0)
	require.NoError(t, StartScouting(s, rules))
	s.SetPosition(model.NewPosition(500, 400))

	seen := newTestVictim("victim1", model.NewPosition(510, 400))
	seen.Discover(testNow.Add(-time.Minute))
	rescued := newTestVictim("victim2", model.NewPosition(490, 400))
	rescued.Deactivate()

	out := StepScout(s, sliceIndex{seen, rescued}, rules, testNow)

	assert.Empty(t, out.Discovered)
	assert.Nil(t, out.Followed)
	assert.Equal(t, model.StateScouting, s.State())
	assert.False(t, rescued.IsDiscovered())
	assert.Equal(t, testNow.Add(-time.Minute), seen.DiscoveryTime())
}

func TestStepScout_NoDetectionOutsideScouting(t *testing.T) {
	rules := testRules()
	s := newTestScout("uav1", model.NewPosition(500, 400), 0)
	v := newTestVictim("victim1", model.NewPosition(510, 400))

	StepScout(s, sliceIndex{v}, rules, testNow)

	assert.False(t, v.IsDiscovered(), "idle scouts do not detect")
	assert.Equal(t, model.StateIdle, s.State())
}

func TestStepScout_MonitoringTracksVictim(t *testing.T) {
	rules := testRules()
	s := newTestScout("uav1", model.NewPosition(500, 400), 0)
	require.NoError(t, StartScouting(s, rules))
	s.SetPosition(model.NewPosition(500, 400))

	v := newTestVictim("victim1", model.NewPosition(530, 400))
	idx := sliceIndex{v}
	StepScout(s, idx, rules, testNow)
	require.Equal(t, model.StateMonitoring, s.State())

	v.SetPosition(model.NewPosition(540, 420))
	StepScout(s, idx, rules, testNow)

	target, ok := s.Target()
	require.True(t, ok)
	assert.Equal(t, model.NewPosition(540, 420), target)
}

func TestStepScout_LostTrackReturnsToSweep(t *testing.T) {
	rules := testRules()
	s := newTestScout("uav1", model.NewPosition(500, 400), 0)
	require.NoError(t, StartScouting(s, rules))
	s.SetPosition(model.NewPosition(500, 400))

	v := newTestVictim("victim1", model.NewPosition(530, 400))
	idx := sliceIndex{v}
	StepScout(s, idx, rules, testNow)
	cursor := s.PatternIndex()

	v.Deactivate()
	out := StepScout(s, idx, rules, testNow)

	assert.Equal(t, "victim1", out.LostTrack)
	assert.Equal(t, model.StateScouting, s.State())
	_, following := s.FollowingVictim()
	assert.False(t, following)
	assert.Equal(t, cursor, s.PatternIndex(), "cursor is not reset")
	_, ok := s.Target()
	assert.True(t, ok)
}

func TestStopMonitoring_KeepsCursor(t *testing.T) {
	rules := testRules()
	s := newTestScout("uav1", model.NewPosition(100, 100), 0)
	require.NoError(t, StartScouting(s, rules))
	s.AdvancePattern()
	s.AdvancePattern()
	s.Follow("victim9")
	s.SetState(model.StateMonitoring)

	require.NoError(t, StopMonitoring(s, rules))

	assert.Equal(t, model.StateScouting, s.State())
	assert.Equal(t, 2, s.PatternIndex())
	_, following := s.FollowingVictim()
	assert.False(t, following)
}

func TestMonitor_FixedPoint(t *testing.T) {
	rules := testRules()
	s := newTestScout("uav1", model.NewPosition(500, 400), 0)
	s.Follow("victim1")

	Monitor(s, model.NewPosition(600, 400))

	assert.Equal(t, model.StateMonitoring, s.State())
	_, following := s.FollowingVictim()
	assert.False(t, following)

	StepScout(s, sliceIndex{}, rules, testNow)
	target, _ := s.Target()
	assert.Equal(t, model.NewPosition(600, 400), target, "point monitoring keeps the commanded target")
}

func TestGoTo_ScoutLeavesSweep(t *testing.T) {
	rules := testRules()
	s := newTestScout("uav1", model.NewPosition(100, 100), 0)
	require.NoError(t, StartScouting(s, rules))

	GoTo(s, model.NewPosition(500, 300))
	assert.Equal(t, model.StateIdle, s.State())

	StepScout(s, sliceIndex{}, rules, testNow)
	target, _ := s.Target()
	assert.Equal(t, model.NewPosition(500, 300), target)
}

func TestGoTo_ScoutFromEveryState(t *testing.T) {
	rules := testRules()
	dest := model.NewPosition(500, 300)

	tests := []struct {
		name  string
		setup func(s *model.Scout)
	}{
		{"idle", func(*model.Scout) {}},
		{"scouting", func(s *model.Scout) { require.NoError(t, StartScouting(s, rules)) }},
		{"monitoring", func(s *model.Scout) {
			s.Follow("victim1")
			s.SetState(model.StateMonitoring)
		}},
		{"returning", func(s *model.Scout) { require.NoError(t, Return(s, rules)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScout("uav1", model.NewPosition(400, 300), 0)
			tt.setup(s)

			GoTo(s, dest)
			assert.Equal(t, model.StateIdle, s.State())
			_, following := s.FollowingVictim()
			assert.False(t, following)

			for range 1000 {
				StepScout(s, sliceIndex{}, rules, testNow)
			}
			target, ok := s.Target()
			require.True(t, ok)
			assert.Equal(t, dest, target, "nothing overrides the commanded target")
			assert.True(t, HasArrived(&s.Entity, dest, rules.ArrivalThreshold))
			assert.Equal(t, model.StateIdle, s.State())
		})
	}
}

func TestReturn_ArrivesAndGoesIdle(t *testing.T) {
	rules := testRules()
	s := newTestScout("uav1", model.NewPosition(110, 100), 0)
	s.Follow("victim1")
	s.SetState(model.StateMonitoring)

	require.NoError(t, Return(s, rules))
	assert.Equal(t, model.StateReturning, s.State())
	_, following := s.FollowingVictim()
	assert.False(t, following)

	returned := false
	for range 100 {
		if out := StepScout(s, sliceIndex{}, rules, testNow); out.Returned {
			returned = true
			break
		}
	}
	require.True(t, returned)
	assert.Equal(t, model.StateIdle, s.State())
	_, ok := s.Target()
	assert.False(t, ok)
	assert.LessOrEqual(t, s.Position().DistanceTo(model.NewPosition(100, 100)), 5.0)
}

func TestReturn_UnknownStation(t *testing.T) {
	rules := testRules()
	s := model.NewScout("uav1", model.NewPosition(0, 0), 7, 0.375, 50, 0)
	assert.Error(t, Return(s, rules))
}

func TestReleaseFollowers(t *testing.T) {
	rules := testRules()
	a := newTestScout("uav1", model.NewPosition(100, 100), 0)
	b := newTestScout("uav2", model.NewPosition(100, 100), 1)
	c := newTestScout("uav3", model.NewPosition(100, 100), 2)
	a.Follow("victim1")
	a.SetState(model.StateMonitoring)
	b.Follow("victim2")
	b.SetState(model.StateMonitoring)

	released := ReleaseFollowers([]*model.Scout{a, b, c}, "victim1", rules)

	assert.Equal(t, []string{"uav1"}, released)
	assert.Equal(t, model.StateScouting, a.State())
	assert.Equal(t, model.StateMonitoring, b.State())
	assert.Equal(t, model.StateIdle, c.State())
}

func TestDetectableCount(t *testing.T) {
	s := newTestScout("uav1", model.NewPosition(500, 400), 0)
	seen := newTestVictim("victim1", model.NewPosition(510, 400))
	seen.Discover(testNow)
	gone := newTestVictim("victim2", model.NewPosition(490, 400))
	gone.Deactivate()
	far := newTestVictim("victim3", model.NewPosition(800, 400))
	fresh := newTestVictim("victim4", model.NewPosition(500, 420))

	idx := sliceIndex{seen, gone, far, fresh}
	assert.Equal(t, 1, DetectableCount(s, idx), "only the undiscovered victim in range counts")
	assert.False(t, fresh.IsDiscovered(), "counting must not discover")

	fresh.Discover(testNow)
	assert.Zero(t, DetectableCount(s, idx))
}
