// Websocket delta stream, an alternative to the SSE endpoint for clients
// that want a single bidirectional socket. Outbound only: inbound frames
// are read solely to detect close.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  16 * 1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // viewer is same-host in production
}

type wsDeltaMessage struct {
	Type   string          `json:"type"`
	Tick   uint64          `json:"tick,omitempty"`
	Deltas json.RawMessage `json:"deltas"`
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	vp, err := parseViewport(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	subID, ch := s.subscribe()
	defer s.unsubscribe(subID)
	slog.Info("websocket client connected", "sub_id", subID)

	done := make(chan struct{})

	// Reader: discard frames, detect close.
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			slog.Info("websocket client disconnected", "sub_id", subID)
			return
		case deltas, ok := <-ch:
			if !ok {
				return
			}
			deltas = s.filterViewport(deltas, vp)
			if len(deltas) == 0 {
				continue
			}
			payload, err := json.Marshal(deltas)
			if err != nil {
				continue
			}
			msg, err := json.Marshal(wsDeltaMessage{Type: "delta", Tick: s.Eng.Tick(), Deltas: payload})
			if err != nil {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}
