package tools

import (
	"strings"
	"testing"

	"github.com/linnea-strand/wkt-spatial-tools/internal/model"
)

func TestAll_OrderFollowsDeclaration(t *testing.T) {
	all := All()
	if len(all) == 0 {
		t.Fatalf("empty catalog")
	}
	if all[0].ID != "area" {
		t.Fatalf("first tool=%s want area", all[0].ID)
	}
	// category transitions must follow Categories() order
	catPos := map[Category]int{}
	for i, c := range Categories() {
		catPos[c] = i
	}
	last := 0
	for _, tool := range all {
		pos, ok := catPos[tool.Category]
		if !ok {
			t.Fatalf("tool %s has unknown category %s", tool.ID, tool.Category)
		}
		if pos < last {
			t.Fatalf("tool %s out of category order", tool.ID)
		}
		last = pos
	}
}

func TestAll_CategoryAnnotated(t *testing.T) {
	for _, tool := range All() {
		if tool.Category == "" {
			t.Fatalf("tool %s missing category annotation", tool.ID)
		}
	}
}

func TestByID(t *testing.T) {
	if tool := ByID("buffer"); tool == nil || tool.Category != CategoryTransformation {
		t.Fatalf("ByID(buffer)=%+v", tool)
	}
	if tool := ByID("no_such_tool"); tool != nil {
		t.Fatalf("ByID on absent id must return nil, got %+v", tool)
	}
}

func TestAvailable_EmptySelection(t *testing.T) {
	if got := Available(nil); len(got) != 0 {
		t.Fatalf("no tools apply to an empty selection, got %d categories", len(got))
	}
}

func hasTool(m map[Category][]Tool, id string) bool {
	for _, ts := range m {
		for _, tool := range ts {
			if tool.ID == id {
				return true
			}
		}
	}
	return false
}

func TestAvailable_SinglePolygon(t *testing.T) {
	got := Available([]model.Kind{model.KindPolygon})
	if !hasTool(got, "centroid") {
		t.Fatalf("centroid must be offered for a single polygon")
	}
	if !hasTool(got, "area") {
		t.Fatalf("area must be offered for a single polygon")
	}
	if hasTool(got, "union") {
		t.Fatalf("union requires at least 2 features")
	}
	if hasTool(got, "length") {
		t.Fatalf("length does not apply to polygons")
	}
	if hasTool(got, "point_x") {
		t.Fatalf("point_x applies to points only")
	}
}

func TestAvailable_TwoPolygons(t *testing.T) {
	got := Available([]model.Kind{model.KindPolygon, model.KindPolygon})
	for _, id := range []string{"union", "intersection", "difference", "within", "distance"} {
		if !hasTool(got, id) {
			t.Fatalf("%s must be offered for two polygons", id)
		}
	}
	if hasTool(got, "centroid") {
		t.Fatalf("centroid is single-select")
	}
}

func TestAvailable_MaxBound(t *testing.T) {
	three := []model.Kind{model.KindPolygon, model.KindPolygon, model.KindPolygon}
	got := Available(three)
	if hasTool(got, "intersection") {
		t.Fatalf("intersection caps at 2 features")
	}
	if !hasTool(got, "union") {
		t.Fatalf("union has no upper bound")
	}
}

func TestAvailable_AnyOverlapQualifies(t *testing.T) {
	// one polygon and one point: area still shows up because ANY selected
	// kind matching is enough; the executor rejects mismatches later
	got := Available([]model.Kind{model.KindPoint, model.KindPolygon, model.KindPolygon})
	if !hasTool(got, "union") {
		t.Fatalf("union must be offered when any selected kind matches")
	}
}

func TestAvailable_OmitsEmptyCategories(t *testing.T) {
	got := Available([]model.Kind{model.KindPoint})
	for cat, ts := range got {
		if len(ts) == 0 {
			t.Fatalf("category %s present but empty", cat)
		}
	}
	if _, ok := got[CategoryOverlay]; ok {
		t.Fatalf("overlay has no single-point tools and must be omitted")
	}
}

func TestFormula_BufferMatchesTemplate(t *testing.T) {
	tool := ByID("buffer")
	got := tool.Expression([]string{"POINT(1 2)"}, Params{"distance": 100.0, "segments": 8.0})
	want := `ST_BUFFER("POINT(1 2)", 100, 8)`
	if got != want {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestFormula_Purity(t *testing.T) {
	tool := ByID("buffer")
	refs := []string{"POINT(1 2)"}
	p := Params{"distance": 250.5}
	a := tool.Expression(refs, p)
	b := tool.Expression(refs, p)
	if a != b {
		t.Fatalf("formula not pure: %s vs %s", a, b)
	}
	if refs[0] != "POINT(1 2)" {
		t.Fatalf("formula mutated its inputs")
	}
}

func TestFormula_Defaults(t *testing.T) {
	got := ByID("buffer").Expression([]string{"g"}, nil)
	if got != `ST_BUFFER("g", 100, 8)` {
		t.Fatalf("defaults not applied: %s", got)
	}
}

func TestFormula_UnionFoldsOverList(t *testing.T) {
	got := ByID("union").Expression([]string{"a", "b", "c"}, nil)
	want := `ST_UNION(ST_UNION("a", "b"), "c")`
	if got != want {
		t.Fatalf("got %s want %s", got, want)
	}
}

func TestFormula_PredicateTools(t *testing.T) {
	got := ByID("within").Expression([]string{"a", "b"}, nil)
	if got != `ST_WITHIN("a", "b")` {
		t.Fatalf("got %s", got)
	}
	got = ByID("dwithin").Expression([]string{"a", "b"}, Params{"distance": 500.0})
	if got != `ST_DWITHIN("a", "b", 500)` {
		t.Fatalf("got %s", got)
	}
}

func TestFormula_ChoiceAndPickerParams(t *testing.T) {
	if got := ByID("transform").Expression([]string{"g"}, Params{"target_srid": "25833"}); got != `ST_TRANSFORM("g", 25833)` {
		t.Fatalf("transform: %s", got)
	}
	if got := ByID("select_within").Expression([]string{"g"}, Params{"zone": "POLYGON((0 0,1 0,1 1,0 0))"}); got != `ST_WITHIN("g", "POLYGON((0 0,1 0,1 1,0 0))")` {
		t.Fatalf("select_within: %s", got)
	}
}

func TestCatalog_NoPlaceholderTokens(t *testing.T) {
	refs := []string{"a", "b", "c"}
	for _, tool := range All() {
		n := 1
		if tool.Arity.MultiSelect {
			n = tool.Arity.Min
			if n < 1 {
				n = 2
			}
		}
		expr := tool.Expression(refs[:n], nil)
		if expr == "" {
			t.Fatalf("tool %s produced empty expression", tool.ID)
		}
		for _, bad := range []string{"%s", "%d", "%v", "{{"} {
			if strings.Contains(expr, bad) {
				t.Fatalf("tool %s left placeholder %q in %s", tool.ID, bad, expr)
			}
		}
	}
}
