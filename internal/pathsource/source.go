// Package pathsource turns authored path data into pathnet paths and
// renders networks back out for visualisation.
package pathsource

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"pathnet"
)

// Format names an input encoding.
type Format string

const (
	FormatGeoJSON Format = "geojson"
	FormatWKT     Format = "wkt"
	FormatJSON    Format = "json"
)

// Options control how decoded points become paths.
type Options struct {
	// SimplifyEpsilon drops points closer than this to the simplified line.
	// Zero keeps every point.
	SimplifyEpsilon float64 `mapstructure:"simplifyEpsilon"`
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".geojson":
		return FormatGeoJSON, nil
	case ".wkt", ".txt":
		return FormatWKT, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("cannot infer path format from %q", name)
}

// File is a pathnet.Source that reads its paths from disk on every rebuild.
type File struct {
	Name    string
	Format  Format
	Options Options
	Logger  zerolog.Logger
}

// Paths implements pathnet.Source.
func (f File) Paths() ([]*pathnet.Path, error) {
	format := f.Format
	if format == "" {
		var err error
		if format, err = FormatFromPath(f.Name); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(f.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	paths, err := Decode(format, data, f.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(f.Name), err)
	}

	f.Logger.Info().Str("file", filepath.Base(f.Name)).Str("format", string(format)).Int("paths", len(paths)).Msg("loaded paths")
	return paths, nil
}

// Decode dispatches on format.
func Decode(format Format, data []byte, opts Options) ([]*pathnet.Path, error) {
	switch format {
	case FormatGeoJSON:
		return DecodeGeoJSON(data, opts)
	case FormatWKT:
		return DecodeWKT(strings.NewReader(string(data)), opts)
	case FormatJSON:
		return DecodeSpecs(data, opts)
	}
	return nil, fmt.Errorf("unknown path format %q", format)
}

// newPath applies the shared options to a freshly decoded point list.
func newPath(name string, points []pathnet.Point, mask pathnet.VehicleMask, allowsSpawn bool, opts Options) *pathnet.Path {
	if opts.SimplifyEpsilon > 0 {
		points = pathnet.SimplifyPoints(points, opts.SimplifyEpsilon)
	}
	p := pathnet.NewPath(name, points)
	p.VehicleMask = mask
	p.AllowsSpawn = allowsSpawn
	return p
}
