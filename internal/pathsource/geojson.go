package pathsource

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"pathnet"
)

// GeoJSON properties read from each feature.
const (
	propName        = "name"
	propVehicleMask = "vehicleMask"
	propNoSpawn     = "noSpawn"
	propZ           = "z"
	propElevation   = "elevation"
)

// DecodeGeoJSON converts LineString and MultiLineString features into
// paths. GeoJSON positions are planar, so the third coordinate comes from a
// per-vertex "z" array or a constant "elevation" property.
func DecodeGeoJSON(data []byte, opts Options) ([]*pathnet.Path, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feature collection: %w", err)
	}

	var paths []*pathnet.Path
	for i, feature := range fc.Features {
		name := feature.Properties.MustString(propName, fmt.Sprintf("feature-%d", i))

		mask, err := maskProperty(feature.Properties)
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", name, err)
		}
		allowsSpawn := !feature.Properties.MustBool(propNoSpawn, false)

		var lines []orb.LineString
		switch g := feature.Geometry.(type) {
		case orb.LineString:
			lines = []orb.LineString{g}
		case orb.MultiLineString:
			lines = g
		default:
			// points, polygons and the like carry no path data
			continue
		}

		for j, line := range lines {
			lineName := name
			if len(lines) > 1 {
				lineName = fmt.Sprintf("%s-%d", name, j)
			}

			z, err := elevations(feature.Properties, len(line), j, len(lines) > 1)
			if err != nil {
				return nil, fmt.Errorf("feature %q: %w", name, err)
			}

			points := make([]pathnet.Point, len(line))
			for k, pt := range line {
				points[k] = pathnet.Point{X: pt.X(), Y: pt.Y(), Z: z[k]}
			}
			paths = append(paths, newPath(lineName, points, mask, allowsSpawn, opts))
		}
	}

	return paths, nil
}

func maskProperty(props geojson.Properties) (pathnet.VehicleMask, error) {
	v, ok := props[propVehicleMask]
	if !ok {
		return pathnet.MaskAll, nil
	}

	switch m := v.(type) {
	case float64:
		if m != math.Trunc(m) || m < 0 || m > float64(pathnet.MaskAll) {
			return pathnet.MaskNone, fmt.Errorf("vehicleMask %v is not a mask in [0, %d]", m, pathnet.MaskAll)
		}
		if mask := pathnet.VehicleMask(m); mask&^pathnet.MaskAll == 0 {
			return mask, nil
		}
		return pathnet.MaskNone, fmt.Errorf("vehicleMask %v has unknown vehicle bits", m)
	case string:
		return pathnet.ParseVehicleMask(m)
	}
	return pathnet.MaskNone, fmt.Errorf("vehicleMask has unsupported type %T", v)
}

// elevations returns n z values. For multi-line features "z" holds one
// array per line.
func elevations(props geojson.Properties, n, line int, multi bool) ([]float64, error) {
	z := make([]float64, n)

	raw, ok := props[propZ]
	if !ok {
		elev := props.MustFloat64(propElevation, 0)
		for i := range z {
			z[i] = elev
		}
		return z, nil
	}

	values, ok := raw.([]interface{})
	if ok && multi {
		if line >= len(values) {
			return nil, fmt.Errorf("z has no entry for line %d", line)
		}
		values, ok = values[line].([]interface{})
	}
	if !ok {
		return nil, fmt.Errorf("z must be an array of numbers")
	}
	if len(values) != n {
		return nil, fmt.Errorf("z has %d values for %d positions", len(values), n)
	}

	for i, v := range values {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("z[%d] is not a number", i)
		}
		z[i] = f
	}
	return z, nil
}

// ExportGeoJSON renders paths as LineString features carrying the same
// properties DecodeGeoJSON reads, so the output can be loaded again.
func ExportGeoJSON(paths []*pathnet.Path) ([]byte, error) {
	fc := geojson.NewFeatureCollection()

	for _, p := range paths {
		if !p.IsValid() {
			continue
		}

		points := p.Points()
		line := make(orb.LineString, len(points))
		z := make([]float64, len(points))
		for i, pt := range points {
			line[i] = orb.Point{pt.X, pt.Y}
			z[i] = pt.Z
		}

		f := geojson.NewFeature(line)
		f.Properties[propName] = p.Name
		f.Properties[propVehicleMask] = p.VehicleMask.String()
		f.Properties[propNoSpawn] = !p.AllowsSpawn
		f.Properties[propZ] = z
		f.Properties["length"] = p.Length()
		fc.Append(f)
	}

	return fc.MarshalJSON()
}

// ExportJunctions renders junction segments as a feature collection.
func ExportJunctions(lines [][2]pathnet.Point) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, l := range lines {
		f := geojson.NewFeature(orb.LineString{{l[0].X, l[0].Y}, {l[1].X, l[1].Y}})
		f.Properties["kind"] = "junction"
		fc.Append(f)
	}
	return fc.MarshalJSON()
}

// Bounds returns the planar extent of the valid paths.
func Bounds(paths []*pathnet.Path) (orb.Bound, bool) {
	var bound orb.Bound
	found := false

	for _, p := range paths {
		if !p.IsValid() {
			continue
		}
		line := make(orb.LineString, 0, p.PointCount())
		for _, pt := range p.Points() {
			line = append(line, orb.Point{pt.X, pt.Y})
		}
		if !found {
			bound = line.Bound()
			found = true
		} else {
			bound = bound.Union(line.Bound())
		}
	}

	return bound, found
}
