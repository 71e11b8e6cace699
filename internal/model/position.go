package model

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Position is a point in simulation space.
// Value type, passed by value.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPosition creates a Position with the given coordinates.
func NewPosition(x, y float64) Position {
	return Position{X: x, Y: y}
}

// Point returns the orb representation of p.
func (p Position) Point() orb.Point {
	return orb.Point{p.X, p.Y}
}

// DistanceTo returns the Euclidean distance to other.
func (p Position) DistanceTo(other Position) float64 {
	return planar.Distance(p.Point(), other.Point())
}

// Within reports whether p lies inside b, boundaries included.
func (p Position) Within(b orb.Bound) bool {
	return b.Contains(p.Point())
}

func (p Position) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y)
}
