package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/atlas-desktop/orb-backtester/internal/market"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	tickInterval = time.Second
	writeWait    = 10 * time.Second
)

// tickMessage is one streamed quote.
type tickMessage struct {
	Type   string      `json:"type"`
	Symbol string      `json:"symbol"`
	Tick   market.Tick `json:"tick"`
}

// handleTickStream streams simulated quotes for a symbol until the
// client disconnects.
func (s *Server) handleTickStream(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	seed := queryInt64(r, "seed", time.Now().UnixNano())

	sim := market.NewTickSimulator(symbol, seed)
	if sim == nil {
		http.Error(w, fmt.Sprintf("unknown ticker %q", symbol), http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	activeTickStreams.Inc()
	defer activeTickStreams.Dec()

	s.logger.Debug("Tick stream opened",
		zap.String("symbol", sim.Symbol()),
		zap.String("remote", r.RemoteAddr),
	)

	// Read pump: drain control frames and detect the client closing.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			msg := tickMessage{
				Type:   "tick",
				Symbol: sim.Symbol(),
				Tick:   sim.NextTick(),
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}
