package command

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/udisondev/sarsim/internal/model"
)

// Params are the loosely typed command arguments as they arrive over the wire.
// Coordinates may be JSON numbers or numeric strings.
type Params map[string]any

// Float reads a finite number from key.
func (p Params) Float(key string) (float64, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return 0, fmt.Errorf("%w: missing %q", ErrBadParams, key)
	}

	var (
		v   float64
		err error
	)
	switch x := raw.(type) {
	case float64:
		v = x
	case float32:
		v = float64(x)
	case int:
		v = float64(x)
	case int64:
		v = float64(x)
	case json.Number:
		v, err = x.Float64()
	case string:
		v, err = strconv.ParseFloat(strings.TrimSpace(x), 64)
	default:
		return 0, fmt.Errorf("%w: %q has unsupported type %T", ErrBadParams, key, raw)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number: %v", ErrBadParams, key, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q must be finite", ErrBadParams, key)
	}
	return v, nil
}

// Position reads the x and y coordinates.
func (p Params) Position() (model.Position, error) {
	x, err := p.Float("x")
	if err != nil {
		return model.Position{}, err
	}
	y, err := p.Float("y")
	if err != nil {
		return model.Position{}, err
	}
	return model.NewPosition(x, y), nil
}
