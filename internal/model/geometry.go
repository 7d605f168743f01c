// Package model holds the normalized geometry types shared by the codec,
// the statistics helpers and the tool catalog.
package model

import (
	"encoding/json"
	"fmt"
)

// Kind is the closed set of geometry types the codec supports.
// GeometryCollection and curved types are deliberately absent.
type Kind string

const (
	KindPoint           Kind = "Point"
	KindLineString      Kind = "LineString"
	KindPolygon         Kind = "Polygon"
	KindMultiPoint      Kind = "MultiPoint"
	KindMultiLineString Kind = "MultiLineString"
	KindMultiPolygon    Kind = "MultiPolygon"
)

// Kinds lists every supported kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindPoint, KindLineString, KindPolygon,
		KindMultiPoint, KindMultiLineString, KindMultiPolygon,
	}
}

// ParseKind maps a GeoJSON type string to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindPoint, KindLineString, KindPolygon,
		KindMultiPoint, KindMultiLineString, KindMultiPolygon:
		return Kind(s), true
	}
	return "", false
}

// Position is a single (lon, lat) coordinate pair. Longitude first,
// matching the WKT/GeoJSON axis order, not map-display (lat, lng).
type Position [2]float64

func (p Position) Lon() float64 { return p[0] }
func (p Position) Lat() float64 { return p[1] }

// Geometry is the normalized in-memory form of a parsed WKT value.
// Exactly one coordinate field is populated, chosen by Kind:
//
//	Point                      -> Point
//	LineString, MultiPoint     -> Points
//	Polygon, MultiLineString   -> Rings (Polygon carries its exterior ring only)
//	MultiPolygon               -> Polygons (one ring per part)
//
// A Geometry is never partially populated: the codec either yields a fully
// valid value of the declared kind or none at all.
type Geometry struct {
	Kind     Kind
	Point    Position
	Points   []Position
	Rings    [][]Position
	Polygons [][][]Position

	// Properties is a free-form bag for consumers that attach metadata
	// after parsing. Never touched by the codec itself.
	Properties map[string]any
}

// EachPosition visits every coordinate pair at whatever nesting depth the
// kind implies, in encounter order.
func (g *Geometry) EachPosition(fn func(Position)) {
	if g == nil {
		return
	}
	switch g.Kind {
	case KindPoint:
		fn(g.Point)
	case KindLineString, KindMultiPoint:
		for _, p := range g.Points {
			fn(p)
		}
	case KindPolygon, KindMultiLineString:
		for _, ring := range g.Rings {
			for _, p := range ring {
				fn(p)
			}
		}
	case KindMultiPolygon:
		for _, poly := range g.Polygons {
			for _, ring := range poly {
				for _, p := range ring {
					fn(p)
				}
			}
		}
	}
}

// coordinates returns the nested coordinate value to marshal for the kind.
func (g *Geometry) coordinates() (any, error) {
	switch g.Kind {
	case KindPoint:
		return g.Point, nil
	case KindLineString, KindMultiPoint:
		return g.Points, nil
	case KindPolygon, KindMultiLineString:
		return g.Rings, nil
	case KindMultiPolygon:
		return g.Polygons, nil
	default:
		return nil, fmt.Errorf("unsupported geometry kind %q", g.Kind)
	}
}

// MarshalJSON renders the geometry as a GeoJSON geometry object
// ({"type": ..., "coordinates": ...}).
func (g *Geometry) MarshalJSON() ([]byte, error) {
	coords, err := g.coordinates()
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Type        string `json:"type"`
		Coordinates any    `json:"coordinates"`
	}{Type: string(g.Kind), Coordinates: coords})
}

// UnmarshalJSON parses a GeoJSON geometry object into the normalized form.
// Interior polygon rings beyond the first are dropped, matching the codec.
func (g *Geometry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse geometry object: %w", err)
	}
	kind, ok := ParseKind(raw.Type)
	if !ok {
		return fmt.Errorf("unsupported geometry type %q", raw.Type)
	}
	if len(raw.Coordinates) == 0 {
		return fmt.Errorf("geometry %q: missing coordinates", raw.Type)
	}

	out := Geometry{Kind: kind}
	switch kind {
	case KindPoint:
		if err := json.Unmarshal(raw.Coordinates, &out.Point); err != nil {
			return fmt.Errorf("point coordinates: %w", err)
		}
	case KindLineString, KindMultiPoint:
		if err := json.Unmarshal(raw.Coordinates, &out.Points); err != nil {
			return fmt.Errorf("%s coordinates: %w", kind, err)
		}
	case KindPolygon:
		var rings [][]Position
		if err := json.Unmarshal(raw.Coordinates, &rings); err != nil {
			return fmt.Errorf("polygon coordinates: %w", err)
		}
		if len(rings) == 0 {
			return fmt.Errorf("polygon: no rings")
		}
		out.Rings = rings[:1]
	case KindMultiLineString:
		if err := json.Unmarshal(raw.Coordinates, &out.Rings); err != nil {
			return fmt.Errorf("multilinestring coordinates: %w", err)
		}
	case KindMultiPolygon:
		var polys [][][]Position
		if err := json.Unmarshal(raw.Coordinates, &polys); err != nil {
			return fmt.Errorf("multipolygon coordinates: %w", err)
		}
		for i, rings := range polys {
			if len(rings) == 0 {
				return fmt.Errorf("multipolygon part %d: no rings", i)
			}
			polys[i] = rings[:1]
		}
		out.Polygons = polys
	}
	out.Properties = g.Properties
	*g = out
	return nil
}
