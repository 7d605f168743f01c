package parsecache

import (
	"testing"

	"github.com/linnea-strand/wkt-spatial-tools/internal/wkt"
)

func TestLookup_MissThenHit(t *testing.T) {
	c := New(16)
	raw := "POINT(1 2)"

	if _, ok := c.Lookup("places", "1", raw); ok {
		t.Fatalf("unexpected hit on empty cache")
	}

	g, err := wkt.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	c.Store("places", "1", raw, g)

	got, ok := c.Lookup("places", "1", raw)
	if !ok {
		t.Fatalf("expected hit after store")
	}
	if got.Point != g.Point {
		t.Fatalf("wrong geometry returned")
	}
}

func TestLookup_ChangedRawNeverServesStale(t *testing.T) {
	c := New(16)
	g, _ := wkt.Parse("POINT(1 2)")
	c.Store("places", "1", "POINT(1 2)", g)

	if _, ok := c.Lookup("places", "1", "POINT(9 9)"); ok {
		t.Fatalf("stale geometry served for changed raw string")
	}
}

func TestInvalidateAndPurge(t *testing.T) {
	c := New(16)
	g, _ := wkt.Parse("POINT(1 2)")
	c.Store("places", "1", "POINT(1 2)", g)
	c.Store("places", "2", "POINT(1 2)", g)

	c.Invalidate("places", "1")
	if _, ok := c.Lookup("places", "1", "POINT(1 2)"); ok {
		t.Fatalf("entry survived invalidation")
	}
	if _, ok := c.Lookup("places", "2", "POINT(1 2)"); !ok {
		t.Fatalf("unrelated entry lost")
	}

	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("purge left %d entries", c.Len())
	}
}

func TestEviction_BoundedSize(t *testing.T) {
	c := New(2)
	g, _ := wkt.Parse("POINT(1 2)")
	c.Store("t", "1", "POINT(1 2)", g)
	c.Store("t", "2", "POINT(1 2)", g)
	c.Store("t", "3", "POINT(1 2)", g)
	if c.Len() > 2 {
		t.Fatalf("lru exceeded capacity: %d", c.Len())
	}
}
