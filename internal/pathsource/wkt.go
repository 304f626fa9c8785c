package pathsource

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/peterstace/simplefeatures/geom"

	"pathnet"
)

// DecodeWKT reads one geometry per line, optionally prefixed by "name =".
// LINESTRING and MULTILINESTRING geometries become paths; Z coordinates are
// kept when present. Blank lines and lines starting with '#' are skipped.
//
//	main-street = LINESTRING Z (0 0 0, 10 0 0)
//	MULTILINESTRING ((0 0, 0 5), (0 5, 5 5))
func DecodeWKT(r io.Reader, opts Options) ([]*pathnet.Path, error) {
	var paths []*pathnet.Path

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name := fmt.Sprintf("wkt-%d", lineNo)
		if before, after, ok := strings.Cut(line, "="); ok {
			name = strings.TrimSpace(before)
			line = strings.TrimSpace(after)
		}

		g, err := geom.UnmarshalWKT(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		switch g.Type() {
		case geom.TypeLineString:
			paths = append(paths, newPath(name, sequencePoints(g.MustAsLineString().Coordinates()), pathnet.MaskAll, true, opts))
		case geom.TypeMultiLineString:
			mls := g.MustAsMultiLineString()
			for i := 0; i < mls.NumLineStrings(); i++ {
				ls := mls.LineStringN(i)
				paths = append(paths, newPath(fmt.Sprintf("%s-%d", name, i), sequencePoints(ls.Coordinates()), pathnet.MaskAll, true, opts))
			}
		default:
			return nil, fmt.Errorf("line %d: %s is not a line geometry", lineNo, g.Type())
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read WKT: %w", err)
	}
	return paths, nil
}

func sequencePoints(seq geom.Sequence) []pathnet.Point {
	points := make([]pathnet.Point, seq.Length())
	for i := range points {
		c := seq.Get(i)
		points[i] = pathnet.Point{X: c.X, Y: c.Y}
		if c.Type.Is3D() {
			points[i].Z = c.Z
		}
	}
	return points
}
