package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/linnea-strand/wkt-spatial-tools/internal/cache/featurestore"
	"github.com/linnea-strand/wkt-spatial-tools/internal/cache/parsecache"
	"github.com/linnea-strand/wkt-spatial-tools/internal/cache/redisstore"
	"github.com/linnea-strand/wkt-spatial-tools/internal/health"
	"github.com/linnea-strand/wkt-spatial-tools/internal/hitevents"
	"github.com/linnea-strand/wkt-spatial-tools/internal/hotness/expdecay"
	"github.com/linnea-strand/wkt-spatial-tools/internal/index"
	"github.com/linnea-strand/wkt-spatial-tools/pkg/adaptive"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, hits *[]hitevents.Event) *Server {
	t.Helper()

	mr := miniredis.RunT(t)
	cli, err := redisstore.New(context.Background(), mr.Addr())
	if err != nil {
		t.Fatalf("redisstore.New: %v", err)
	}
	t.Cleanup(func() { _ = cli.Close() })

	idx, err := index.New(8)
	if err != nil {
		t.Fatalf("index.New: %v", err)
	}

	opts := Options{
		Store:      featurestore.NewRedis(cli, time.Minute),
		ParseCache: parsecache.New(64),
		Index:      idx,
		Hotness:    expdecay.New(time.Minute),
		TTL: adaptive.NewTTLDecider(adaptive.Config{
			Threshold: 10,
			TTLCold:   30 * time.Second,
			TTLWarm:   time.Minute,
			TTLHot:    2 * time.Minute,
		}),
		Readiness: map[string]health.Check{
			"redis": func() error { return nil },
		},
	}
	if hits != nil {
		opts.PublishHit = func(ev hitevents.Event) { *hits = append(*hits, ev) }
	}
	return New(discardLogger(), opts)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t, nil).Router()
	rr := doJSON(t, h, http.MethodGet, "/healthz", nil)
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != "ok" {
		t.Fatalf("healthz: code=%d body=%q", rr.Code, rr.Body.String())
	}
}

func TestReadyz(t *testing.T) {
	h := newTestServer(t, nil).Router()
	rr := doJSON(t, h, http.MethodGet, "/readyz", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("readyz: code=%d body=%q", rr.Code, rr.Body.String())
	}
}

func TestParse_OK(t *testing.T) {
	h := newTestServer(t, nil).Router()
	rr := doJSON(t, h, http.MethodPost, "/v1/geometry/parse", map[string]string{
		"wkt": "LINESTRING(11 55, 12 56)",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("code=%d body=%q", rr.Code, rr.Body.String())
	}

	var resp struct {
		Geometry struct {
			Type        string      `json:"type"`
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
		BBox  *bboxDTO `json:"bbox"`
		Stats statsDTO `json:"stats"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Geometry.Type != "LineString" || len(resp.Geometry.Coordinates) != 2 {
		t.Fatalf("geometry=%+v", resp.Geometry)
	}
	if resp.BBox == nil || resp.BBox.MinLon != 11 || resp.BBox.MaxLat != 56 {
		t.Fatalf("bbox=%+v", resp.BBox)
	}
	if resp.Stats.NumPoints != 2 || resp.Stats.LengthKm <= 0 {
		t.Fatalf("stats=%+v", resp.Stats)
	}
}

func TestParse_InvalidWKT_422(t *testing.T) {
	h := newTestServer(t, nil).Router()
	for _, bad := range []string{"CIRCLE(1 2, 3)", "POINT(1)", "LINESTRING(1 2, x y)"} {
		rr := doJSON(t, h, http.MethodPost, "/v1/geometry/parse", map[string]string{"wkt": bad})
		if rr.Code != http.StatusUnprocessableEntity {
			t.Fatalf("wkt=%q code=%d want 422", bad, rr.Code)
		}
	}
}

func TestParse_CachedSecondHit(t *testing.T) {
	var hits []hitevents.Event
	h := newTestServer(t, &hits).Router()
	body := map[string]string{"table": "places", "id": "9", "wkt": "POINT(18.07 59.33)"}

	first := doJSON(t, h, http.MethodPost, "/v1/geometry/parse", body)
	second := doJSON(t, h, http.MethodPost, "/v1/geometry/parse", body)
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("codes=%d/%d", first.Code, second.Code)
	}
	if !strings.Contains(second.Body.String(), `"cached":true`) {
		t.Fatalf("second parse not served from cache: %s", second.Body.String())
	}
	if len(hits) != 2 || hits[0].Table != "places" || hits[0].Lon != 18.07 {
		t.Fatalf("hit events=%+v", hits)
	}
}

func TestToWKT_RoundTrip(t *testing.T) {
	h := newTestServer(t, nil).Router()
	req := map[string]any{
		"type":        "Point",
		"coordinates": []float64{11.5, 55.25},
	}
	rr := doJSON(t, h, http.MethodPost, "/v1/geometry/wkt", req)
	if rr.Code != http.StatusOK {
		t.Fatalf("code=%d body=%q", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "POINT(11.5 55.25)") {
		t.Fatalf("body=%q", rr.Body.String())
	}
}

func TestListTools(t *testing.T) {
	h := newTestServer(t, nil).Router()
	rr := doJSON(t, h, http.MethodGet, "/v1/tools", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("code=%d", rr.Code)
	}
	var resp struct {
		Tools []toolDTO `json:"tools"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Tools) < 20 {
		t.Fatalf("catalog looks truncated: %d tools", len(resp.Tools))
	}
	seen := map[string]bool{}
	for _, tool := range resp.Tools {
		if seen[tool.ID] {
			t.Fatalf("duplicate tool id %q", tool.ID)
		}
		seen[tool.ID] = true
	}
	if !seen["buffer"] || !seen["union"] || !seen["is_valid"] {
		t.Fatalf("expected well-known tools in %v", seen)
	}
}

func TestAvailable_GroupsByCategory(t *testing.T) {
	h := newTestServer(t, nil).Router()
	rr := doJSON(t, h, http.MethodPost, "/v1/tools/available", map[string]any{
		"kinds": []string{"Polygon"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("code=%d body=%q", rr.Code, rr.Body.String())
	}
	var resp struct {
		Categories map[string][]toolDTO `json:"categories"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	meas, ok := resp.Categories["measurement"]
	if !ok {
		t.Fatalf("no measurement category: %v", resp.Categories)
	}
	for _, tool := range meas {
		if tool.ID == "distance" {
			t.Fatalf("two-feature tool offered for single selection")
		}
	}
}

func TestAvailable_UnknownKind_400(t *testing.T) {
	h := newTestServer(t, nil).Router()
	rr := doJSON(t, h, http.MethodPost, "/v1/tools/available", map[string]any{
		"kinds": []string{"Blob"},
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("code=%d want 400", rr.Code)
	}
}

func TestFormula_Buffer(t *testing.T) {
	h := newTestServer(t, nil).Router()
	rr := doJSON(t, h, http.MethodPost, "/v1/tools/buffer/formula", map[string]any{
		"refs":   []string{"POINT(1 2)"},
		"params": map[string]any{"distance": 250},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("code=%d body=%q", rr.Code, rr.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := `ST_BUFFER("POINT(1 2)", 250, 8)`
	if resp["formula"] != want {
		t.Fatalf("formula=%q want %q", resp["formula"], want)
	}
}

func TestFormula_UnknownTool_404(t *testing.T) {
	h := newTestServer(t, nil).Router()
	rr := doJSON(t, h, http.MethodPost, "/v1/tools/teleport/formula", map[string]any{
		"refs": []string{"POINT(1 2)"},
	})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("code=%d want 404", rr.Code)
	}
}

func TestFormula_ArityViolation_400(t *testing.T) {
	h := newTestServer(t, nil).Router()
	rr := doJSON(t, h, http.MethodPost, "/v1/tools/intersection/formula", map[string]any{
		"refs": []string{"a", "b", "c"},
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("code=%d want 400", rr.Code)
	}
}

func TestFormula_KindMismatch_400(t *testing.T) {
	h := newTestServer(t, nil).Router()
	rr := doJSON(t, h, http.MethodPost, "/v1/tools/point_x/formula", map[string]any{
		"refs":  []string{"a"},
		"kinds": []string{"Polygon"},
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("code=%d want 400", rr.Code)
	}
}

func TestFeatures_PutGetNear(t *testing.T) {
	var hits []hitevents.Event
	h := newTestServer(t, &hits).Router()

	put := httptest.NewRequest(http.MethodPut, "/v1/features/places/42",
		strings.NewReader("POINT(18.07 59.33)"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, put)
	if rr.Code != http.StatusOK {
		t.Fatalf("put code=%d body=%q", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"kind":"Point"`) {
		t.Fatalf("put body=%q", rr.Body.String())
	}

	get := doJSON(t, h, http.MethodGet, "/v1/features/places/42", nil)
	if get.Code != http.StatusOK {
		t.Fatalf("get code=%d body=%q", get.Code, get.Body.String())
	}
	if !strings.Contains(get.Body.String(), "POINT(18.07 59.33)") {
		t.Fatalf("get body=%q", get.Body.String())
	}
	if len(hits) != 1 || hits[0].ID != "42" {
		t.Fatalf("hit events=%+v", hits)
	}

	near := doJSON(t, h, http.MethodGet, "/v1/features/near?lon=18.07&lat=59.33&rings=1", nil)
	if near.Code != http.StatusOK {
		t.Fatalf("near code=%d body=%q", near.Code, near.Body.String())
	}
	if !strings.Contains(near.Body.String(), "places:42") {
		t.Fatalf("near body=%q", near.Body.String())
	}
}

func TestFeatures_PutInvalidWKT_422(t *testing.T) {
	h := newTestServer(t, nil).Router()
	req := httptest.NewRequest(http.MethodPut, "/v1/features/places/1",
		strings.NewReader("POLYGON(1 2)"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("code=%d want 422", rr.Code)
	}
}

func TestFeatures_GetMissing_404(t *testing.T) {
	h := newTestServer(t, nil).Router()
	rr := doJSON(t, h, http.MethodGet, "/v1/features/places/none", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("code=%d want 404", rr.Code)
	}
}

func TestNear_BadParams_400(t *testing.T) {
	h := newTestServer(t, nil).Router()
	for _, path := range []string{
		"/v1/features/near",
		"/v1/features/near?lon=11",
		"/v1/features/near?lon=11&lat=55&rings=-1",
	} {
		rr := doJSON(t, h, http.MethodGet, path, nil)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("path=%s code=%d want 400", path, rr.Code)
		}
	}
}
