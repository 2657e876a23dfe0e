package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The portal is an unauthenticated local surface; origin checks would
	// only break captive-portal browsers.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type roleEvent struct {
	Role      string    `json:"role"`
	Timestamp time.Time `json:"timestamp"`
}

// handleEvents upgrades to a websocket and streams a JSON message on every
// role transition, starting with the current role so clients need no
// separate status fetch.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Debug("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ch, cancel := h.ctrl.Subscribe()
	defer cancel()

	// Reader goroutine: its only job is noticing the peer going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	snap := h.ctrl.Status()
	if err := conn.WriteJSON(roleEvent{Role: snap.Role.String(), Timestamp: time.Now()}); err != nil {
		return
	}

	for {
		select {
		case change, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(roleEvent{Role: change.Role.String(), Timestamp: change.At}); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
