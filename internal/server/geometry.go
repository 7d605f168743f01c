package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/linnea-strand/wkt-spatial-tools/internal/geomstats"
	"github.com/linnea-strand/wkt-spatial-tools/internal/hitevents"
	"github.com/linnea-strand/wkt-spatial-tools/internal/model"
	"github.com/linnea-strand/wkt-spatial-tools/internal/observability"
	"github.com/linnea-strand/wkt-spatial-tools/internal/wkt"
)

type parseRequest struct {
	Table string `json:"table,omitempty"`
	ID    string `json:"id,omitempty"`
	WKT   string `json:"wkt"`
}

type statsDTO struct {
	NumPoints int     `json:"num_points"`
	AreaM2    float64 `json:"area_m2,omitempty"`
	LengthKm  float64 `json:"length_km,omitempty"`
}

type parseResponse struct {
	Geometry *model.Geometry `json:"geometry"`
	BBox     *bboxDTO        `json:"bbox,omitempty"`
	Stats    statsDTO        `json:"stats"`
	Cached   bool            `json:"cached"`
}

// handleParse decodes a WKT string into GeoJSON plus bbox and measurement
// stats. When table/id are given the parse cache is consulted first; the
// cached geometry is only served while the raw string is unchanged.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body: "+err.Error())
		return
	}
	if req.WKT == "" {
		writeError(w, http.StatusBadRequest, "wkt is required")
		return
	}

	var (
		g      *model.Geometry
		cached bool
	)
	if s.parsed != nil && req.Table != "" && req.ID != "" {
		g, cached = s.parsed.Lookup(req.Table, req.ID, req.WKT)
	}
	if g == nil {
		parsed, err := wkt.Parse(req.WKT)
		if err != nil {
			observability.IncParse("error")
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		g = parsed
		if s.parsed != nil && req.Table != "" && req.ID != "" {
			s.parsed.Store(req.Table, req.ID, req.WKT, g)
		}
	}
	observability.IncParse("ok")

	resp := parseResponse{Geometry: g, Cached: cached, Stats: stats(g)}
	if bb, ok := geomstats.Bounds(g); ok {
		dto := toBBoxDTO(bb)
		resp.BBox = &dto

		if req.Table != "" && req.ID != "" {
			if s.hot != nil {
				s.hot.Inc(hotKeyFor(req.Table, req.ID))
			}
			if s.publishHit != nil {
				c := bb.Center()
				s.publishHit(hitevents.Event{
					Table: req.Table, ID: req.ID,
					Lon: c.Lon(), Lat: c.Lat(), TS: time.Now().UTC(),
				})
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleToWKT renders a GeoJSON geometry back to WKT.
func (s *Server) handleToWKT(w http.ResponseWriter, r *http.Request) {
	var g model.Geometry
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid geometry: "+err.Error())
		return
	}
	out, err := wkt.Marshal(&g)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"wkt": out})
}

func stats(g *model.Geometry) statsDTO {
	n := 0
	g.EachPosition(func(model.Position) { n++ })
	return statsDTO{
		NumPoints: n,
		AreaM2:    geomstats.Area(g),
		LengthKm:  geomstats.Length(g),
	}
}
