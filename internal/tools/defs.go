package tools

import (
	"strings"

	"github.com/linnea-strand/wkt-spatial-tools/internal/model"
)

var (
	arealKinds  = []model.Kind{model.KindPolygon, model.KindMultiPolygon}
	linearKinds = []model.Kind{model.KindLineString, model.KindMultiLineString}
	shapeKinds  = []model.Kind{
		model.KindLineString, model.KindMultiLineString,
		model.KindPolygon, model.KindMultiPolygon,
	}
	pointKinds = []model.Kind{model.KindPoint}
)

func unary(fn string) FormulaFunc {
	return func(refs []string, _ Params) string {
		return fn + "(" + quote(refs[0]) + ")"
	}
}

func binary(fn string) FormulaFunc {
	return func(refs []string, _ Params) string {
		return fn + "(" + quote(refs[0]) + ", " + quote(refs[1]) + ")"
	}
}

// foldUnion nests binary ST_UNION calls over the whole reference list.
func foldUnion(refs []string, _ Params) string {
	expr := quote(refs[0])
	for _, r := range refs[1:] {
		expr = "ST_UNION(" + expr + ", " + quote(r) + ")"
	}
	return expr
}

// catalog is the single source of truth for the tool registry. Category
// order and tool order within a category are meaningful and surface
// unchanged in listings.
var catalog = []categoryDef{
	{Category: CategoryMeasurement, Tools: []Tool{
		{
			ID: "area", Label: "Area",
			Kinds:   arealKinds,
			Arity:   Arity{MultiSelect: false},
			Result:  ResultNumeric,
			Formula: unary("ST_AREA"),
		},
		{
			ID: "perimeter", Label: "Perimeter",
			Kinds:   arealKinds,
			Arity:   Arity{MultiSelect: false},
			Result:  ResultNumeric,
			Formula: unary("ST_PERIMETER"),
		},
		{
			ID: "length", Label: "Length",
			Kinds:   linearKinds,
			Arity:   Arity{MultiSelect: false},
			Result:  ResultNumeric,
			Formula: unary("ST_LENGTH"),
		},
		{
			ID: "distance", Label: "Distance",
			Arity:   Arity{MultiSelect: true, Min: 2, Max: 2},
			Result:  ResultNumeric,
			Formula: binary("ST_DISTANCE"),
		},
		{
			ID: "num_points", Label: "Vertex count",
			Arity:   Arity{MultiSelect: false},
			Result:  ResultNumeric,
			Formula: unary("ST_NPOINTS"),
		},
	}},
	{Category: CategoryTransformation, Tools: []Tool{
		{
			ID: "centroid", Label: "Centroid",
			Arity:   Arity{MultiSelect: false},
			Result:  ResultGeometry,
			Formula: unary("ST_CENTROID"),
		},
		{
			ID: "buffer", Label: "Buffer",
			Arity: Arity{MultiSelect: false},
			Params: []Param{
				{Name: "distance", Type: ParamNumber, Default: 100.0, Min: fptr(0), Max: fptr(1e6)},
				{Name: "segments", Type: ParamNumber, Default: 8.0, Min: fptr(1), Max: fptr(64)},
			},
			Result: ResultGeometry,
			Formula: func(refs []string, p Params) string {
				return "ST_BUFFER(" + quote(refs[0]) + ", " +
					num(p.Number("distance", 100)) + ", " +
					num(p.Number("segments", 8)) + ")"
			},
		},
		{
			ID: "simplify", Label: "Simplify",
			Kinds: shapeKinds,
			Arity: Arity{MultiSelect: false},
			Params: []Param{
				{Name: "tolerance", Type: ParamNumber, Default: 0.001, Min: fptr(0)},
			},
			Result: ResultGeometry,
			Formula: func(refs []string, p Params) string {
				return "ST_SIMPLIFY(" + quote(refs[0]) + ", " + num(p.Number("tolerance", 0.001)) + ")"
			},
		},
		{
			ID: "convex_hull", Label: "Convex hull",
			Arity:   Arity{MultiSelect: false},
			Result:  ResultGeometry,
			Formula: unary("ST_CONVEXHULL"),
		},
		{
			ID: "envelope", Label: "Bounding box",
			Arity:   Arity{MultiSelect: false},
			Result:  ResultGeometry,
			Formula: unary("ST_ENVELOPE"),
		},
	}},
	{Category: CategoryOverlay, Tools: []Tool{
		{
			ID: "union", Label: "Union",
			Kinds:   arealKinds,
			Arity:   Arity{MultiSelect: true, Min: 2},
			Result:  ResultGeometry,
			Formula: foldUnion,
		},
		{
			ID: "intersection", Label: "Intersection",
			Kinds:   arealKinds,
			Arity:   Arity{MultiSelect: true, Min: 2, Max: 2},
			Result:  ResultGeometry,
			Formula: binary("ST_INTERSECTION"),
		},
		{
			ID: "difference", Label: "Difference",
			Kinds:   arealKinds,
			Arity:   Arity{MultiSelect: true, Min: 2, Max: 2},
			Result:  ResultGeometry,
			Formula: binary("ST_DIFFERENCE"),
		},
		{
			ID: "sym_difference", Label: "Symmetric difference",
			Kinds:   arealKinds,
			Arity:   Arity{MultiSelect: true, Min: 2, Max: 2},
			Result:  ResultGeometry,
			Formula: binary("ST_SYMDIFFERENCE"),
		},
	}},
	{Category: CategorySpatialQuery, Tools: []Tool{
		{
			ID: "within", Label: "Within",
			Arity:     Arity{MultiSelect: true, Min: 2, Max: 2},
			Result:    ResultBoolean,
			Predicate: binary("ST_WITHIN"),
		},
		{
			ID: "contains", Label: "Contains",
			Arity:     Arity{MultiSelect: true, Min: 2, Max: 2},
			Result:    ResultBoolean,
			Predicate: binary("ST_CONTAINS"),
		},
		{
			ID: "intersects", Label: "Intersects",
			Arity:     Arity{MultiSelect: true, Min: 2, Max: 2},
			Result:    ResultBoolean,
			Predicate: binary("ST_INTERSECTS"),
		},
		{
			ID: "dwithin", Label: "Within distance",
			Arity: Arity{MultiSelect: true, Min: 2, Max: 2},
			Params: []Param{
				{Name: "distance", Type: ParamNumber, Default: 1000.0, Min: fptr(0)},
			},
			Result: ResultBoolean,
			Predicate: func(refs []string, p Params) string {
				return "ST_DWITHIN(" + quote(refs[0]) + ", " + quote(refs[1]) + ", " +
					num(p.Number("distance", 1000)) + ")"
			},
		},
		{
			ID: "select_within", Label: "Select features inside zone",
			Arity: Arity{MultiSelect: false},
			Params: []Param{
				{Name: "zone", Type: ParamGeometryPicker},
			},
			Result: ResultSelection,
			Predicate: func(refs []string, p Params) string {
				return "ST_WITHIN(" + quote(refs[0]) + ", " + quote(p.Text("zone", "")) + ")"
			},
		},
	}},
	{Category: CategoryConversion, Tools: []Tool{
		{
			ID: "as_text", Label: "As WKT",
			Arity:   Arity{MultiSelect: false},
			Result:  ResultText,
			Formula: unary("ST_ASTEXT"),
		},
		{
			ID: "as_geojson", Label: "As GeoJSON",
			Arity:   Arity{MultiSelect: false},
			Result:  ResultText,
			Formula: unary("ST_ASGEOJSON"),
		},
		{
			ID: "transform", Label: "Reproject",
			Arity: Arity{MultiSelect: false},
			Params: []Param{
				{Name: "target_srid", Type: ParamChoice, Default: "3857", Options: []string{"4326", "3857", "25833"}},
			},
			Result: ResultGeometry,
			Formula: func(refs []string, p Params) string {
				return "ST_TRANSFORM(" + quote(refs[0]) + ", " + p.Text("target_srid", "3857") + ")"
			},
		},
		{
			ID: "point_x", Label: "X coordinate",
			Kinds:   pointKinds,
			Arity:   Arity{MultiSelect: false},
			Result:  ResultNumeric,
			Formula: unary("ST_X"),
		},
		{
			ID: "point_y", Label: "Y coordinate",
			Kinds:   pointKinds,
			Arity:   Arity{MultiSelect: false},
			Result:  ResultNumeric,
			Formula: unary("ST_Y"),
		},
	}},
	{Category: CategoryValidation, Tools: []Tool{
		{
			ID: "is_valid", Label: "Is valid",
			Arity:     Arity{MultiSelect: false},
			Result:    ResultBoolean,
			Predicate: unary("ST_ISVALID"),
		},
		{
			ID: "make_valid", Label: "Make valid",
			Arity:   Arity{MultiSelect: false},
			Result:  ResultGeometry,
			Formula: unary("ST_MAKEVALID"),
		},
	}},
}

// KindsLabel renders a tool's applicability for listings ("all" or a
// comma-joined kind list).
func (t *Tool) KindsLabel() string {
	if len(t.Kinds) == 0 {
		return "all"
	}
	names := make([]string, len(t.Kinds))
	for i, k := range t.Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ",")
}
