package model

// Scout is an airborne search agent (UAV) sweeping a coverage lane.
type Scout struct {
	Entity

	detectionRadius float64
	lane            int

	// scanPattern is generated once on first scouting activation and kept for the scout's lifetime.
	scanPattern  []Position
	patternIndex int

	// followingVictim holds the id of the tracked victim, resolved through the victim collection every tick.
	followingVictim string
}

// NewScout creates an idle scout parked at pos.
func NewScout(id string, pos Position, homeStation int, velocity, detectionRadius float64, lane int) *Scout {
	return &Scout{
		Entity:          newEntity(id, KindScout, pos, velocity, homeStation),
		detectionRadius: detectionRadius,
		lane:            lane,
	}
}

func (s *Scout) Base() *Entity { return &s.Entity }
func (s *Scout) sealedAgent()  {}

// DetectionRadius returns the distance within which the scout sees victims.
func (s *Scout) DetectionRadius() float64 {
	return s.detectionRadius
}

// Lane returns the coverage lane index assigned to the scout.
func (s *Scout) Lane() int {
	return s.lane
}

// HasScanPattern reports whether the pattern was generated already.
func (s *Scout) HasScanPattern() bool {
	return s.scanPattern != nil
}

// ScanPattern returns the sweep points. The slice must not be modified.
func (s *Scout) ScanPattern() []Position {
	return s.scanPattern
}

// SetScanPattern stores the pattern unless one is already present.
// Returns false when the existing pattern was kept.
func (s *Scout) SetScanPattern(pattern []Position) bool {
	if s.scanPattern != nil {
		return false
	}
	s.scanPattern = append(make([]Position, 0, len(pattern)), pattern...)
	return true
}

// PatternIndex returns the sweep cursor.
func (s *Scout) PatternIndex() int {
	return s.patternIndex
}

// ResetPattern moves the sweep cursor back to the first point.
func (s *Scout) ResetPattern() {
	s.patternIndex = 0
}

// CurrentPatternPoint returns the point under the cursor.
func (s *Scout) CurrentPatternPoint() (Position, bool) {
	if s.patternIndex < 0 || s.patternIndex >= len(s.scanPattern) {
		return Position{}, false
	}
	return s.scanPattern[s.patternIndex], true
}

// AdvancePattern moves the cursor forward, wrapping to 0 past the last point.
func (s *Scout) AdvancePattern() {
	if len(s.scanPattern) == 0 {
		return
	}
	s.patternIndex++
	if s.patternIndex >= len(s.scanPattern) {
		s.patternIndex = 0
	}
}

// FollowingVictim returns the id of the tracked victim.
func (s *Scout) FollowingVictim() (string, bool) {
	return s.followingVictim, s.followingVictim != ""
}

// Follow binds the scout to victim id.
func (s *Scout) Follow(victimID string) {
	s.followingVictim = victimID
}

// StopFollowing clears the tracked victim.
func (s *Scout) StopFollowing() {
	s.followingVictim = ""
}
