// Package geomstats computes summary statistics over normalized geometries:
// bounding boxes, approximate areas and great-circle lengths. The area figure
// is a coarse bounding-box approximation intended for human-readable
// summaries, not authoritative measurement.
package geomstats

import (
	"math"

	"github.com/golang/geo/s2"

	"github.com/linnea-strand/wkt-spatial-tools/internal/model"
)

const (
	// metersPerDegree is the approximate length of one degree of latitude.
	metersPerDegree = 111320.0

	// earthRadiusKm is the mean earth radius used for segment lengths.
	earthRadiusKm = 6371.0088
)

// Bounds folds every coordinate pair of g into a min/max box. The second
// return value is false when the geometry holds no coordinates at all; a
// zero-valued box is never returned as a stand-in.
func Bounds(g *model.Geometry) (model.BBox, bool) {
	var bb model.BBox
	n := 0
	g.EachPosition(func(p model.Position) {
		if n == 0 {
			bb = model.BBox{MinLon: p.Lon(), MinLat: p.Lat(), MaxLon: p.Lon(), MaxLat: p.Lat()}
		} else {
			bb = bb.Extend(p)
		}
		n++
	})
	if n == 0 {
		return model.BBox{}, false
	}
	return bb, true
}

// Area approximates the planar area of a Polygon or MultiPolygon in square
// meters: bounding-box extent scaled by meters-per-degree with a
// latitude-cosine correction for longitude compression. Other kinds yield 0.
func Area(g *model.Geometry) float64 {
	if g == nil {
		return 0
	}
	switch g.Kind {
	case model.KindPolygon, model.KindMultiPolygon:
	default:
		return 0
	}
	bb, ok := Bounds(g)
	if !ok {
		return 0
	}
	midLat := (bb.MinLat + bb.MaxLat) / 2
	width := (bb.MaxLon - bb.MinLon) * metersPerDegree * math.Cos(midLat*math.Pi/180)
	height := (bb.MaxLat - bb.MinLat) * metersPerDegree
	return math.Abs(width * height)
}

// Length sums great-circle distances between consecutive vertices of a
// LineString or MultiLineString, in kilometers. Other kinds yield 0.
func Length(g *model.Geometry) float64 {
	if g == nil {
		return 0
	}
	switch g.Kind {
	case model.KindLineString:
		return lineKm(g.Points)
	case model.KindMultiLineString:
		total := 0.0
		for _, line := range g.Rings {
			total += lineKm(line)
		}
		return total
	default:
		return 0
	}
}

func lineKm(pts []model.Position) float64 {
	total := 0.0
	for i := 1; i < len(pts); i++ {
		a := s2.LatLngFromDegrees(pts[i-1].Lat(), pts[i-1].Lon())
		b := s2.LatLngFromDegrees(pts[i].Lat(), pts[i].Lon())
		total += a.Distance(b).Radians() * earthRadiusKm
	}
	return total
}
