package wkt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/linnea-strand/wkt-spatial-tools/internal/model"
)

// Marshal serializes a normalized geometry back to WKT. Coordinates are
// written at full shortest-round-trip precision so Parse(Marshal(g)) is
// coordinate-equal to g. Unknown kinds return ErrUnsupportedType.
func Marshal(g *model.Geometry) (string, error) {
	if g == nil {
		return "", fmt.Errorf("%w: nil geometry", ErrMalformed)
	}
	switch g.Kind {
	case model.KindPoint:
		return "POINT(" + pair(g.Point) + ")", nil
	case model.KindLineString:
		return "LINESTRING(" + ring(g.Points) + ")", nil
	case model.KindPolygon:
		return "POLYGON(" + rings(g.Rings) + ")", nil
	case model.KindMultiPoint:
		parts := make([]string, len(g.Points))
		for i, p := range g.Points {
			parts[i] = "(" + pair(p) + ")"
		}
		return "MULTIPOINT(" + strings.Join(parts, ", ") + ")", nil
	case model.KindMultiLineString:
		return "MULTILINESTRING(" + rings(g.Rings) + ")", nil
	case model.KindMultiPolygon:
		parts := make([]string, len(g.Polygons))
		for i, poly := range g.Polygons {
			parts[i] = "(" + rings(poly) + ")"
		}
		return "MULTIPOLYGON(" + strings.Join(parts, ", ") + ")", nil
	default:
		return "", ErrUnsupportedType
	}
}

func pair(p model.Position) string {
	return strconv.FormatFloat(p.Lon(), 'f', -1, 64) + " " +
		strconv.FormatFloat(p.Lat(), 'f', -1, 64)
}

func ring(pts []model.Position) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = pair(p)
	}
	return strings.Join(parts, ", ")
}

func rings(rr [][]model.Position) string {
	parts := make([]string, len(rr))
	for i, r := range rr {
		parts[i] = "(" + ring(r) + ")"
	}
	return strings.Join(parts, ", ")
}
