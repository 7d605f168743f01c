// Package index keeps an in-memory H3 cell index of stored features. Each
// feature is bucketed by the cell of its bounding-box center; proximity
// queries expand a grid disk around the query point and collect the bucket
// contents. This is a candidate filter, not an exact spatial predicate.
package index

import (
	"fmt"
	"sort"
	"sync"

	h3 "github.com/uber/h3-go/v4"

	"github.com/linnea-strand/wkt-spatial-tools/internal/cache/keys"
	"github.com/linnea-strand/wkt-spatial-tools/internal/geomstats"
	"github.com/linnea-strand/wkt-spatial-tools/internal/model"
)

type Index struct {
	res int

	mu    sync.RWMutex
	cells map[h3.Cell]map[string]struct{}
	feats map[string]h3.Cell
}

func New(res int) (*Index, error) {
	if res < 0 || res > 15 {
		return nil, fmt.Errorf("invalid H3 resolution %d (must be 0..15)", res)
	}
	return &Index{
		res:   res,
		cells: make(map[h3.Cell]map[string]struct{}),
		feats: make(map[string]h3.Cell),
	}, nil
}

// Add indexes one feature under the cell of its bounding-box center,
// replacing any previous placement.
func (x *Index) Add(table, id string, g *model.Geometry) error {
	bb, ok := geomstats.Bounds(g)
	if !ok {
		return fmt.Errorf("index %s/%s: geometry has no coordinates", table, id)
	}
	center := bb.Center()
	cell, err := h3.LatLngToCell(h3.LatLng{Lat: center.Lat(), Lng: center.Lon()}, x.res)
	if err != nil {
		return fmt.Errorf("h3 cell for %s/%s: %w", table, id, err)
	}

	key := keys.HotKey(table, id)

	x.mu.Lock()
	defer x.mu.Unlock()

	if old, ok := x.feats[key]; ok {
		delete(x.cells[old], key)
		if len(x.cells[old]) == 0 {
			delete(x.cells, old)
		}
	}
	if x.cells[cell] == nil {
		x.cells[cell] = make(map[string]struct{})
	}
	x.cells[cell][key] = struct{}{}
	x.feats[key] = cell
	return nil
}

func (x *Index) Remove(table, id string) {
	key := keys.HotKey(table, id)

	x.mu.Lock()
	defer x.mu.Unlock()

	cell, ok := x.feats[key]
	if !ok {
		return
	}
	delete(x.feats, key)
	delete(x.cells[cell], key)
	if len(x.cells[cell]) == 0 {
		delete(x.cells, cell)
	}
}

// Near returns the keys of features whose cell lies within rings grid steps
// of the query point, sorted for determinism.
func (x *Index) Near(lon, lat float64, rings int) ([]string, error) {
	if rings < 0 {
		rings = 0
	}
	origin, err := h3.LatLngToCell(h3.LatLng{Lat: lat, Lng: lon}, x.res)
	if err != nil {
		return nil, fmt.Errorf("h3 cell for query point: %w", err)
	}
	disk, err := h3.GridDisk(origin, rings)
	if err != nil {
		return nil, fmt.Errorf("h3 grid disk: %w", err)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	var out []string
	for _, cell := range disk {
		for key := range x.cells[cell] {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.feats)
}
