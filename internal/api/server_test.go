package api

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"parcelforge/internal/geom"
	"parcelforge/internal/sim"
	"parcelforge/internal/world"
)

func testServer() *Server {
	m := &world.WorldMap{
		Width:  100,
		Height: 100,
		Parcels: []*world.Parcel{
			{ID: 0, Center: geom.Point{X: 5, Y: 50}, Terrain: world.TerrainGrassland, Resources: []world.Resource{}, Neighbors: []int{}},
			{ID: 1, Center: geom.Point{X: 95, Y: 50}, Terrain: world.TerrainForest, Resources: []world.Resource{}, Neighbors: []int{}},
			{ID: 2, Center: geom.Point{X: 50, Y: 50}, Terrain: world.TerrainOcean, Resources: []world.Resource{}, Neighbors: []int{}},
		},
		Boundaries: []world.Boundary{},
	}
	s := sim.New(m)
	return &Server{Map: m, Sim: s, Eng: sim.NewEngine(m, s), AdminKey: "sesame"}
}

func TestHandleStatus(t *testing.T) {
	srv := testServer()
	rec := httptest.NewRecorder()
	srv.handleStatus(rec, httptest.NewRequest("GET", "/api/v1/status", nil))

	var got struct {
		Tick    uint64 `json:"tick"`
		Running bool   `json:"running"`
		Parcels int    `json:"parcels"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Parcels != 3 || got.Running {
		t.Fatalf("status = %+v", got)
	}
}

func TestHandleParcel(t *testing.T) {
	srv := testServer()

	rec := httptest.NewRecorder()
	srv.handleParcel(rec, httptest.NewRequest("GET", "/api/v1/parcel/1", nil))
	if rec.Code != 200 {
		t.Fatalf("parcel 1 status = %d", rec.Code)
	}
	var p world.Parcel
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatal(err)
	}
	if p.ID != 1 || p.Terrain != world.TerrainForest {
		t.Fatalf("parcel = %+v", p)
	}

	rec = httptest.NewRecorder()
	srv.handleParcel(rec, httptest.NewRequest("GET", "/api/v1/parcel/99", nil))
	if rec.Code != 404 {
		t.Fatalf("missing parcel status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.handleParcel(rec, httptest.NewRequest("GET", "/api/v1/parcel/abc", nil))
	if rec.Code != 400 {
		t.Fatalf("bad id status = %d, want 400", rec.Code)
	}
}

func TestViewportFilterWrapsSeam(t *testing.T) {
	srv := testServer()
	deltas := []sim.ParcelDelta{{ID: 0}, {ID: 1}, {ID: 2}}

	// A viewport hanging over the left edge: x in [-10, 10]. It must see the
	// parcel at x=5 directly and the one at x=95 through the wrap.
	vp := &viewport{x0: -10, y0: 0, x1: 10, y1: 100}
	got := srv.filterViewport(deltas, vp)
	if len(got) != 2 || got[0].ID != 0 || got[1].ID != 1 {
		t.Fatalf("filtered = %+v, want parcels 0 and 1", got)
	}

	// Nil viewport passes everything through.
	if got := srv.filterViewport(deltas, nil); len(got) != 3 {
		t.Fatalf("nil viewport filtered to %+v", got)
	}
}

func TestParseViewport(t *testing.T) {
	vp, err := parseViewport(httptest.NewRequest("GET", "/api/v1/stream?x0=1&y0=2&x1=3&y1=4", nil))
	if err != nil || vp == nil {
		t.Fatalf("vp = %v, err = %v", vp, err)
	}
	if vp.x0 != 1 || vp.y0 != 2 || vp.x1 != 3 || vp.y1 != 4 {
		t.Fatalf("vp = %+v", vp)
	}

	vp, err = parseViewport(httptest.NewRequest("GET", "/api/v1/stream", nil))
	if err != nil || vp != nil {
		t.Fatalf("no params should give nil viewport, got %v, %v", vp, err)
	}

	if _, err := parseViewport(httptest.NewRequest("GET", "/api/v1/stream?x0=a&y0=2&x1=3&y1=4", nil)); err == nil {
		t.Fatal("bad float accepted")
	}
}

func TestRequireAdmin(t *testing.T) {
	srv := testServer()

	cases := []struct {
		name   string
		method string
		auth   string
		key    string
		want   int
	}{
		{"wrong method", "GET", "Bearer sesame", "sesame", 405},
		{"no token", "POST", "", "sesame", 401},
		{"wrong token", "POST", "Bearer nope", "sesame", 401},
		{"disabled", "POST", "Bearer sesame", "", 403},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			srv.AdminKey = c.key
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(c.method, "/api/v1/pause", nil)
			if c.auth != "" {
				req.Header.Set("Authorization", c.auth)
			}
			if srv.requireAdmin(rec, req) {
				t.Fatal("unauthorized request passed")
			}
			if rec.Code != c.want {
				t.Fatalf("status = %d, want %d", rec.Code, c.want)
			}
		})
	}

	srv.AdminKey = "sesame"
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/pause", nil)
	req.Header.Set("Authorization", "Bearer sesame")
	if !srv.requireAdmin(rec, req) {
		t.Fatal("valid token rejected")
	}
}

func TestHandleSpeed(t *testing.T) {
	srv := testServer()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/speed", strings.NewReader(`{"speed": 4}`))
	req.Header.Set("Authorization", "Bearer sesame")
	srv.handleSpeed(rec, req)
	if rec.Code != 200 || srv.Sim.Speed() != 4 {
		t.Fatalf("status = %d, speed = %v", rec.Code, srv.Sim.Speed())
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/api/v1/speed", strings.NewReader(`{"speed": -1}`))
	req.Header.Set("Authorization", "Bearer sesame")
	srv.handleSpeed(rec, req)
	if rec.Code != 400 {
		t.Fatalf("negative speed status = %d, want 400", rec.Code)
	}
	if srv.Sim.Speed() != 4 {
		t.Fatal("rejected request changed the speed")
	}
}

func TestPublishDropsWhenSubscriberFull(t *testing.T) {
	srv := testServer()
	_, ch := srv.subscribe()

	// Fill the buffer and keep publishing; Publish must never block.
	for i := 0; i < deltaBuffer+5; i++ {
		srv.Publish([]sim.ParcelDelta{{ID: i}})
	}
	if len(ch) != deltaBuffer {
		t.Fatalf("buffered = %d, want %d", len(ch), deltaBuffer)
	}
}
