// Package wkt converts between Well-Known Text and the normalized geometry
// model. Parsing and serialization are pure and synchronous; any failure is
// reported as an error and callers are expected to skip the affected feature
// rather than abort.
//
// Scope limitations, shared with the serializer:
//   - polygons carry their exterior ring only; interior rings (holes) are
//     dropped on parse and never emitted
//   - GeometryCollection and curved types are not supported
package wkt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/linnea-strand/wkt-spatial-tools/internal/model"
)

var (
	// ErrUnsupportedType marks input whose keyword prefix is not one of the
	// six supported geometry types.
	ErrUnsupportedType = errors.New("wkt: unsupported geometry type")

	// ErrMalformed marks structurally broken input (missing parentheses,
	// empty bodies, bad coordinate tokens).
	ErrMalformed = errors.New("wkt: malformed input")
)

// Parse converts a WKT string into a normalized geometry. The keyword prefix
// is matched case-insensitively after trimming surrounding whitespace.
//
// An invalid numeric token anywhere in the input rejects the whole geometry;
// no NaN coordinates are ever produced.
func Parse(s string) (*model.Geometry, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty input", ErrMalformed)
	}

	upper := strings.ToUpper(s)
	switch {
	case strings.HasPrefix(upper, "MULTIPOINT"):
		return parseMultiPoint(s)
	case strings.HasPrefix(upper, "POINT"):
		return parsePoint(s)
	case strings.HasPrefix(upper, "MULTILINESTRING"):
		return parseMultiLineString(s)
	case strings.HasPrefix(upper, "LINESTRING"):
		return parseLineString(s)
	case strings.HasPrefix(upper, "MULTIPOLYGON"):
		return parseMultiPolygon(s)
	case strings.HasPrefix(upper, "POLYGON"):
		return parsePolygon(s)
	default:
		return nil, ErrUnsupportedType
	}
}

// body extracts the text between the first "(" and the matching last ")".
func body(s string) (string, error) {
	i := strings.Index(s, "(")
	j := strings.LastIndex(s, ")")
	if i < 0 || j <= i {
		return "", fmt.Errorf("%w: missing parentheses", ErrMalformed)
	}
	inner := strings.TrimSpace(s[i+1 : j])
	if inner == "" {
		return "", fmt.Errorf("%w: empty body", ErrMalformed)
	}
	return inner, nil
}

// parsePair parses one "x y" token pair.
func parsePair(tuple string) (model.Position, error) {
	fields := strings.Fields(strings.TrimSpace(tuple))
	if len(fields) < 2 {
		return model.Position{}, fmt.Errorf("%w: coordinate pair %q", ErrMalformed, tuple)
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return model.Position{}, fmt.Errorf("%w: bad longitude %q", ErrMalformed, fields[0])
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return model.Position{}, fmt.Errorf("%w: bad latitude %q", ErrMalformed, fields[1])
	}
	return model.Position{x, y}, nil
}

// parseRing parses a comma-separated list of "x y" pairs.
func parseRing(s string) ([]model.Position, error) {
	parts := strings.Split(s, ",")
	out := make([]model.Position, 0, len(parts))
	for _, part := range parts {
		p, err := parsePair(part)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// splitTopLevel splits s at commas that sit at parenthesis depth zero.
// MultiPolygon groups cannot be split naively because commas also separate
// ring points; the depth counter keeps nested rings intact.
func splitTopLevel(s string) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	out = append(out, strings.TrimSpace(s[start:]))
	return out
}

// stripOuterParens removes one balanced layer of parentheses, if present.
func stripOuterParens(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return "", fmt.Errorf("%w: expected parenthesized group, got %q", ErrMalformed, s)
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return "", fmt.Errorf("%w: empty group", ErrMalformed)
	}
	return inner, nil
}

func parsePoint(s string) (*model.Geometry, error) {
	b, err := body(s)
	if err != nil {
		return nil, err
	}
	p, err := parsePair(b)
	if err != nil {
		return nil, err
	}
	return &model.Geometry{Kind: model.KindPoint, Point: p, Properties: map[string]any{}}, nil
}

func parseLineString(s string) (*model.Geometry, error) {
	b, err := body(s)
	if err != nil {
		return nil, err
	}
	pts, err := parseRing(b)
	if err != nil {
		return nil, err
	}
	return &model.Geometry{Kind: model.KindLineString, Points: pts, Properties: map[string]any{}}, nil
}

// parsePolygon extracts the exterior ring only. Interior rings are dropped.
func parsePolygon(s string) (*model.Geometry, error) {
	b, err := body(s)
	if err != nil {
		return nil, err
	}
	rings := splitTopLevel(b)
	exterior, err := stripOuterParens(rings[0])
	if err != nil {
		return nil, err
	}
	pts, err := parseRing(exterior)
	if err != nil {
		return nil, err
	}
	return &model.Geometry{
		Kind:       model.KindPolygon,
		Rings:      [][]model.Position{pts},
		Properties: map[string]any{},
	}, nil
}

// parseMultiPoint accepts both the parenthesized form MULTIPOINT((1 2), (3 4))
// and the bare form MULTIPOINT(1 2, 3 4).
func parseMultiPoint(s string) (*model.Geometry, error) {
	b, err := body(s)
	if err != nil {
		return nil, err
	}
	groups := splitTopLevel(b)
	pts := make([]model.Position, 0, len(groups))
	for _, g := range groups {
		tuple := g
		if strings.HasPrefix(g, "(") {
			if tuple, err = stripOuterParens(g); err != nil {
				return nil, err
			}
		}
		p, err := parsePair(tuple)
		if err != nil {
			return nil, err
		}
		pts = append(pts, p)
	}
	return &model.Geometry{Kind: model.KindMultiPoint, Points: pts, Properties: map[string]any{}}, nil
}

func parseMultiLineString(s string) (*model.Geometry, error) {
	b, err := body(s)
	if err != nil {
		return nil, err
	}
	groups := splitTopLevel(b)
	lines := make([][]model.Position, 0, len(groups))
	for _, g := range groups {
		inner, err := stripOuterParens(g)
		if err != nil {
			return nil, err
		}
		pts, err := parseRing(inner)
		if err != nil {
			return nil, err
		}
		lines = append(lines, pts)
	}
	return &model.Geometry{Kind: model.KindMultiLineString, Rings: lines, Properties: map[string]any{}}, nil
}

// parseMultiPolygon splits polygon groups with the depth-tracking splitter,
// then extracts the exterior ring of each part.
func parseMultiPolygon(s string) (*model.Geometry, error) {
	b, err := body(s)
	if err != nil {
		return nil, err
	}
	groups := splitTopLevel(b)
	polys := make([][][]model.Position, 0, len(groups))
	for _, g := range groups {
		polyBody, err := stripOuterParens(g)
		if err != nil {
			return nil, err
		}
		rings := splitTopLevel(polyBody)
		exterior, err := stripOuterParens(rings[0])
		if err != nil {
			return nil, err
		}
		pts, err := parseRing(exterior)
		if err != nil {
			return nil, err
		}
		polys = append(polys, [][]model.Position{pts})
	}
	return &model.Geometry{Kind: model.KindMultiPolygon, Polygons: polys, Properties: map[string]any{}}, nil
}
