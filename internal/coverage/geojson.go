package coverage

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/udisondev/sarsim/internal/model"
)

// FeatureCollection renders the search region and every scout's sweep as GeoJSON.
// patterns is keyed by scout id; scouts without a pattern are skipped.
func FeatureCollection(region orb.Bound, patterns map[string][]model.Position) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	area := geojson.NewFeature(region.ToPolygon())
	area.Properties["kind"] = "region"
	fc.Append(area)

	ids := make([]string, 0, len(patterns))
	for id, p := range patterns {
		if len(p) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	for _, id := range ids {
		pattern := patterns[id]
		line := make(orb.LineString, 0, len(pattern))
		for _, p := range pattern {
			line = append(line, p.Point())
		}

		f := geojson.NewFeature(line)
		f.Properties["kind"] = "scan_pattern"
		f.Properties["scout"] = id
		f.Properties["points"] = len(pattern)
		fc.Append(f)
	}

	return fc
}
