package server

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/linnea-strand/wkt-spatial-tools/internal/cache/keys"
	"github.com/linnea-strand/wkt-spatial-tools/internal/geomstats"
	"github.com/linnea-strand/wkt-spatial-tools/internal/hitevents"
	"github.com/linnea-strand/wkt-spatial-tools/internal/model"
	"github.com/linnea-strand/wkt-spatial-tools/internal/observability"
	"github.com/linnea-strand/wkt-spatial-tools/internal/wkt"
)

const maxFeatureBytes = 1 << 20

func hotKeyFor(table, id string) string {
	return keys.HotKey(table, id)
}

// handlePutFeature stores a raw WKT body under (table, id), warms the parse
// cache and places the feature in the cell index. The store TTL comes from
// the per-table override when set, otherwise from the adaptive decider.
func (s *Server) handlePutFeature(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "feature store disabled")
		return
	}
	table := chi.URLParam(r, "table")
	id := chi.URLParam(r, "id")

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxFeatureBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}
	if len(raw) == 0 {
		writeError(w, http.StatusBadRequest, "empty body")
		return
	}

	g, err := wkt.Parse(string(raw))
	if err != nil {
		observability.IncParse("error")
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	observability.IncParse("ok")

	ttl := time.Duration(0)
	tier := ""
	if ovr, ok := s.ttlOvr[table]; ok {
		ttl = ovr
		tier = "pinned"
	} else if s.ttl != nil {
		d, t := s.ttl.Decide(hotKeyFor(table, id), s.hot)
		ttl = d
		tier = string(t)
	}

	if err := s.store.Put(r.Context(), table, id, raw, ttl); err != nil {
		s.log.Error("feature put failed", "table", table, "id", id, "err", err)
		writeError(w, http.StatusBadGateway, "store write failed")
		return
	}
	if s.parsed != nil {
		s.parsed.Store(table, id, string(raw), g)
	}

	resp := map[string]any{"kind": g.Kind, "ttl_tier": tier}
	if bb, ok := geomstats.Bounds(g); ok {
		if s.idx != nil {
			if err := s.idx.Add(table, id, g); err != nil {
				s.log.Warn("cell index add failed", "table", table, "id", id, "err", err)
			}
		}
		resp["bbox"] = toBBoxDTO(bb)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetFeature returns the stored raw WKT and its decoded geometry,
// and counts the access toward the feature's hotness.
func (s *Server) handleGetFeature(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "feature store disabled")
		return
	}
	table := chi.URLParam(r, "table")
	id := chi.URLParam(r, "id")

	raw, ok, err := s.store.Get(r.Context(), table, id)
	if err != nil {
		s.log.Error("feature get failed", "table", table, "id", id, "err", err)
		writeError(w, http.StatusBadGateway, "store read failed")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "feature not found")
		return
	}

	var (
		geom   *model.Geometry
		cached bool
	)
	if s.parsed != nil {
		geom, cached = s.parsed.Lookup(table, id, string(raw))
	}
	if geom == nil {
		pg, err := wkt.Parse(string(raw))
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "stored feature is not valid: "+err.Error())
			return
		}
		geom = pg
		if s.parsed != nil {
			s.parsed.Store(table, id, string(raw), pg)
		}
	}

	if s.hot != nil {
		s.hot.Inc(hotKeyFor(table, id))
	}
	if s.publishHit != nil {
		if bb, ok := geomstats.Bounds(geom); ok {
			c := bb.Center()
			s.publishHit(hitevents.Event{
				Table: table, ID: id,
				Lon: c.Lon(), Lat: c.Lat(), TS: time.Now().UTC(),
			})
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"wkt":      string(raw),
		"geometry": geom,
		"cached":   cached,
	})
}

// handleNear lists indexed feature ids around a coordinate.
func (s *Server) handleNear(w http.ResponseWriter, r *http.Request) {
	if s.idx == nil {
		writeError(w, http.StatusServiceUnavailable, "cell index disabled")
		return
	}
	q := r.URL.Query()
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "lon is required")
		return
	}
	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "lat is required")
		return
	}
	rings := s.nearRings
	if v := q.Get("rings"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "rings must be a non-negative integer")
			return
		}
		rings = n
	}

	ids, err := s.idx.Near(lon, lat, rings)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"features": ids})
}
