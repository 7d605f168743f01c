package model

import "fmt"

// BBox is an axis-aligned bounding box in EPSG:4326, lon/lat order.
type BBox struct {
	MinLon, MinLat float64
	MaxLon, MaxLat float64
}

func (b BBox) String() string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", b.MinLon, b.MinLat, b.MaxLon, b.MaxLat)
}

// Extend grows the box to include p.
func (b BBox) Extend(p Position) BBox {
	if p.Lon() < b.MinLon {
		b.MinLon = p.Lon()
	}
	if p.Lat() < b.MinLat {
		b.MinLat = p.Lat()
	}
	if p.Lon() > b.MaxLon {
		b.MaxLon = p.Lon()
	}
	if p.Lat() > b.MaxLat {
		b.MaxLat = p.Lat()
	}
	return b
}

// Center returns the midpoint of the box.
func (b BBox) Center() Position {
	return Position{(b.MinLon + b.MaxLon) / 2, (b.MinLat + b.MaxLat) / 2}
}
