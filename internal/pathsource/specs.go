package pathsource

import (
	"encoding/json"
	"fmt"

	"pathnet"
)

// PathSpec is the JSON form of a path.
type PathSpec struct {
	Name        string       `json:"name"`
	Points      [][3]float64 `json:"points"`
	VehicleMask string       `json:"vehicleMask,omitempty"` // e.g. "Car|Bus"; empty means All
	NoSpawn     bool         `json:"noSpawn,omitempty"`
}

// Specs is a pathnet.Source over decoded path specs.
type Specs struct {
	Specs   []PathSpec
	Options Options
}

// Paths implements pathnet.Source.
func (s Specs) Paths() ([]*pathnet.Path, error) {
	paths := make([]*pathnet.Path, 0, len(s.Specs))
	for i, spec := range s.Specs {
		mask, err := pathnet.ParseVehicleMask(spec.VehicleMask)
		if err != nil {
			return nil, fmt.Errorf("path %d (%s): %w", i, spec.Name, err)
		}

		points := make([]pathnet.Point, len(spec.Points))
		for j, c := range spec.Points {
			points[j] = pathnet.Point{X: c[0], Y: c[1], Z: c[2]}
		}

		name := spec.Name
		if name == "" {
			name = fmt.Sprintf("path-%d", i)
		}
		paths = append(paths, newPath(name, points, mask, !spec.NoSpawn, s.Options))
	}
	return paths, nil
}

// DecodeSpecs parses a JSON array of PathSpec.
func DecodeSpecs(data []byte, opts Options) ([]*pathnet.Path, error) {
	var specs []PathSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal paths: %w", err)
	}
	return Specs{Specs: specs, Options: opts}.Paths()
}

// SpecOf converts a path back into its JSON form.
func SpecOf(p *pathnet.Path) PathSpec {
	spec := PathSpec{
		Name:    p.Name,
		NoSpawn: !p.AllowsSpawn,
	}
	if p.VehicleMask != pathnet.MaskAll {
		spec.VehicleMask = p.VehicleMask.String()
	}
	for _, pt := range p.Points() {
		spec.Points = append(spec.Points, [3]float64{pt.X, pt.Y, pt.Z})
	}
	return spec
}
