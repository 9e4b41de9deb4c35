// Package api serves the world state over HTTP.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (simulation control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"parcelforge/internal/geom"
	"parcelforge/internal/persistence"
	"parcelforge/internal/sim"
	"parcelforge/internal/world"
)

const deltaBuffer = 16

// Server serves one world and its simulation over HTTP.
type Server struct {
	Map   *world.WorldMap
	Sim   *sim.Simulator
	Eng   *sim.Engine
	Store *persistence.Store
	Port  int

	// AdminKey is the bearer token for POST endpoints. Empty = POST disabled.
	AdminKey string

	subMu   sync.Mutex
	subs    map[int]chan []sim.ParcelDelta
	nextSub int
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/map", s.handleMap)
	mux.HandleFunc("/api/v1/parcel/", s.handleParcel)
	mux.HandleFunc("/api/v1/worlds", s.handleWorlds)
	mux.HandleFunc("/api/v1/stream", s.handleStream)
	mux.HandleFunc("/api/v1/ws", s.handleWS)

	// Control plane (POST, bearer token).
	mux.HandleFunc("/api/v1/speed", s.handleSpeed)
	mux.HandleFunc("/api/v1/pause", s.handlePause)
	mux.HandleFunc("/api/v1/resume", s.handleResume)

	addr := fmt.Sprintf(":%d", s.Port)
	go func() {
		slog.Info("API listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("API server failed", "error", err)
		}
	}()
}

// Publish fans a tick's change set out to all subscribers. Slow consumers
// drop deltas rather than stall the tick loop.
func (s *Server) Publish(deltas []sim.ParcelDelta) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- deltas:
		default:
		}
	}
}

func (s *Server) subscribe() (int, chan []sim.ParcelDelta) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.subs == nil {
		s.subs = make(map[int]chan []sim.ParcelDelta)
	}
	id := s.nextSub
	s.nextSub++
	ch := make(chan []sim.ParcelDelta, deltaBuffer)
	s.subs[id] = ch
	return id, ch
}

func (s *Server) unsubscribe(id int) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if ch, ok := s.subs[id]; ok {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.Eng.Mu.Lock()
	lastUpdate := s.Map.LastUpdate
	parcels := len(s.Map.Parcels)
	s.Eng.Mu.Unlock()

	writeJSON(w, map[string]any{
		"tick":       s.Eng.Tick(),
		"running":    s.Sim.Running(),
		"speed":      s.Sim.Speed(),
		"parcels":    parcels,
		"lastUpdate": lastUpdate,
	})
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	s.Eng.Mu.Lock()
	data, err := world.Marshal(s.Map)
	s.Eng.Mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) handleParcel(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/v1/parcel/")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "bad parcel id", http.StatusBadRequest)
		return
	}

	s.Eng.Mu.Lock()
	p := s.Map.Parcel(id)
	var data []byte
	if p != nil {
		data, err = json.Marshal(p)
	}
	s.Eng.Mu.Unlock()

	if p == nil {
		http.Error(w, "parcel not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) handleWorlds(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		http.Error(w, "no store configured", http.StatusNotFound)
		return
	}
	infos, err := s.Store.ListWorlds()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, infos)
}

// handleStream pushes tick deltas as Server-Sent Events. An optional
// viewport (?x0=&y0=&x1=&y1=) filters deltas to parcels whose centers fall
// in the rectangle, wrap-aware.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	vp, err := parseViewport(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	subID, ch := s.subscribe()
	defer s.unsubscribe(subID)
	slog.Info("SSE client connected", "sub_id", subID, "viewport", vp != nil)

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case deltas, ok := <-ch:
			if !ok {
				return
			}
			deltas = s.filterViewport(deltas, vp)
			if len(deltas) == 0 {
				continue
			}
			data, err := json.Marshal(deltas)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: delta\ndata: %s\n\n", data)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			slog.Info("SSE client disconnected", "sub_id", subID)
			return
		}
	}
}

type viewport struct {
	x0, y0, x1, y1 float64
}

func parseViewport(r *http.Request) (*viewport, error) {
	q := r.URL.Query()
	if q.Get("x0") == "" && q.Get("y0") == "" && q.Get("x1") == "" && q.Get("y1") == "" {
		return nil, nil
	}
	var vp viewport
	for _, f := range []struct {
		key string
		dst *float64
	}{{"x0", &vp.x0}, {"y0", &vp.y0}, {"x1", &vp.x1}, {"y1", &vp.y1}} {
		v, err := strconv.ParseFloat(q.Get(f.key), 64)
		if err != nil {
			return nil, fmt.Errorf("bad viewport parameter %s", f.key)
		}
		*f.dst = v
	}
	return &vp, nil
}

// filterViewport keeps deltas whose parcel center lies in the viewport,
// also considering centers translated by the map extent so viewports
// hanging over the wrap seam behave.
func (s *Server) filterViewport(deltas []sim.ParcelDelta, vp *viewport) []sim.ParcelDelta {
	if vp == nil {
		return deltas
	}

	s.Eng.Mu.Lock()
	defer s.Eng.Mu.Unlock()

	w, h := s.Map.Width, s.Map.Height
	var out []sim.ParcelDelta
	for _, d := range deltas {
		p := s.Map.Parcel(d.ID)
		if p != nil && vp.contains(p.Center, w, h) {
			out = append(out, d)
		}
	}
	return out
}

func (vp *viewport) contains(c geom.Point, w, h float64) bool {
	for _, dx := range [3]float64{0, -w, w} {
		for _, dy := range [3]float64{0, -h, h} {
			x, y := c.X+dx, c.Y+dy
			if x >= vp.x0 && x <= vp.x1 && y >= vp.y0 && y <= vp.y1 {
				return true
			}
		}
	}
	return false
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	var req struct {
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	if req.Speed < 0 || req.Speed > 100 {
		http.Error(w, "speed outside [0, 100]", http.StatusBadRequest)
		return
	}
	s.Sim.SetSpeed(req.Speed)
	slog.Info("simulation speed changed", "speed", req.Speed)
	writeJSON(w, map[string]any{"speed": req.Speed})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	s.Sim.Stop()
	slog.Info("simulation paused")
	writeJSON(w, map[string]any{"running": false})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	s.Sim.Start()
	slog.Info("simulation resumed")
	writeJSON(w, map[string]any{"running": true})
}

// requireAdmin enforces POST + bearer token on control endpoints.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if s.AdminKey == "" {
		http.Error(w, "admin endpoints disabled", http.StatusForbidden)
		return false
	}
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.AdminKey {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
