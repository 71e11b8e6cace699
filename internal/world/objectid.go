package world

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
)

// IDGenerator hands out entity ids per kind: uav1, boat1, victim1, ...
// Ids are never reused during a run.
type IDGenerator struct {
	nextScout   atomic.Uint32
	nextRescuer atomic.Uint32
	nextVictim  atomic.Uint32
}

// NewIDGenerator creates a new ID generator.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// NextScoutID generates next scout id.
func (g *IDGenerator) NextScoutID() string {
	return fmt.Sprintf("uav%d", g.nextScout.Add(1))
}

// NextRescuerID generates next rescuer id.
func (g *IDGenerator) NextRescuerID() string {
	return fmt.Sprintf("boat%d", g.nextRescuer.Add(1))
}

// NextVictimID generates next victim id.
func (g *IDGenerator) NextVictimID() string {
	return fmt.Sprintf("victim%d", g.nextVictim.Add(1))
}

// LaneForID derives a scout's coverage lane from the numeric suffix of its id:
// uav1 → 0, uav2 → 1, ... modulo lanes. Ids without a suffix get lane 0.
func LaneForID(id string, lanes int) int {
	if lanes <= 0 {
		return 0
	}
	digits := strings.TrimLeftFunc(id, func(r rune) bool { return r < '0' || r > '9' })
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return 0
	}
	return (n - 1) % lanes
}
