package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestGeometry_JSONRoundTrip(t *testing.T) {
	g := Geometry{
		Kind:   KindLineString,
		Points: []Position{{11, 55}, {12, 56}},
	}
	b, err := json.Marshal(&g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"type":"LineString"`) {
		t.Fatalf("json=%s", b)
	}

	var back Geometry
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Kind != KindLineString || len(back.Points) != 2 || back.Points[1].Lat() != 56 {
		t.Fatalf("round trip=%+v", back)
	}
}

func TestGeometry_UnmarshalDropsInnerRings(t *testing.T) {
	in := `{"type":"Polygon","coordinates":[
		[[0,0],[4,0],[4,4],[0,4],[0,0]],
		[[1,1],[2,1],[2,2],[1,2],[1,1]]]}`
	var g Geometry
	if err := json.Unmarshal([]byte(in), &g); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(g.Rings) != 1 || len(g.Rings[0]) != 5 {
		t.Fatalf("rings=%v, want exterior ring only", g.Rings)
	}
}

func TestGeometry_UnmarshalRejectsUnknownType(t *testing.T) {
	var g Geometry
	err := json.Unmarshal([]byte(`{"type":"CircularString","coordinates":[]}`), &g)
	if err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}

func TestEachPosition_CountsByKind(t *testing.T) {
	cases := []struct {
		name string
		g    Geometry
		want int
	}{
		{"point", Geometry{Kind: KindPoint, Point: Position{1, 2}}, 1},
		{"linestring", Geometry{Kind: KindLineString, Points: []Position{{0, 0}, {1, 1}, {2, 2}}}, 3},
		{"multipolygon", Geometry{Kind: KindMultiPolygon, Polygons: [][][]Position{
			{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}},
			{{{5, 5}, {6, 5}, {6, 6}, {5, 5}}},
		}}, 8},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			n := 0
			c.g.EachPosition(func(Position) { n++ })
			if n != c.want {
				t.Fatalf("visited %d positions, want %d", n, c.want)
			}
		})
	}
}

func TestBBox_ExtendAndCenter(t *testing.T) {
	b := BBox{MinLon: 11, MinLat: 55, MaxLon: 11, MaxLat: 55}
	b = b.Extend(Position{13, 57})
	b = b.Extend(Position{10, 54})
	if b.MinLon != 10 || b.MinLat != 54 || b.MaxLon != 13 || b.MaxLat != 57 {
		t.Fatalf("bbox=%+v", b)
	}
	c := b.Center()
	if c.Lon() != 11.5 || c.Lat() != 55.5 {
		t.Fatalf("center=%v", c)
	}
}
