// Package coverage generates boustrophedon ("lawnmower") sweep patterns
// that split a rectangular search region between scouts.
package coverage

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/udisondev/sarsim/internal/model"
)

var ErrInvalidLane = errors.New("invalid lane")

// Lane returns the vertical strip of region assigned to lane index of lanes.
// Strips have equal width and together cover region exactly.
func Lane(region orb.Bound, index, lanes int) (orb.Bound, error) {
	if lanes <= 0 || index < 0 || index >= lanes {
		return orb.Bound{}, fmt.Errorf("%w: index %d of %d", ErrInvalidLane, index, lanes)
	}

	width := (region.Max[0] - region.Min[0]) / float64(lanes)
	left := region.Min[0] + float64(index)*width

	return orb.Bound{
		Min: orb.Point{left, region.Min[1]},
		Max: orb.Point{left + width, region.Max[1]},
	}, nil
}

// Generate builds the sweep for lane index of lanes over region.
//
// Sample points are spaced spacing×detectionRadius apart on both axes,
// starting at the lane's top-left corner and stopping short of its far edges.
// Columns alternate top-to-bottom and bottom-to-top so consecutive points are
// always neighbours. The result is never empty for a valid lane.
func Generate(region orb.Bound, index, lanes int, detectionRadius, spacing float64) ([]model.Position, error) {
	if detectionRadius <= 0 || spacing <= 0 {
		return nil, fmt.Errorf("%w: step %.2f×%.2f must be positive", ErrInvalidLane, spacing, detectionRadius)
	}

	lane, err := Lane(region, index, lanes)
	if err != nil {
		return nil, err
	}

	step := detectionRadius * spacing
	xs := steps(lane.Min[0], lane.Max[0], step)
	ys := steps(lane.Min[1], lane.Max[1], step)

	pattern := make([]model.Position, 0, len(xs)*len(ys))
	for col, x := range xs {
		if col%2 == 0 {
			for _, y := range ys {
				pattern = append(pattern, model.NewPosition(x, y))
			}
			continue
		}
		for i := len(ys) - 1; i >= 0; i-- {
			pattern = append(pattern, model.NewPosition(x, ys[i]))
		}
	}

	return pattern, nil
}

// steps returns start, start+step, ... strictly below end.
// A degenerate interval yields just start.
func steps(start, end, step float64) []float64 {
	var out []float64
	for k := 0; ; k++ {
		v := start + float64(k)*step
		if v >= end {
			break
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		out = append(out, start)
	}
	return out
}
