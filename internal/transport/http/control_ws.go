package http

import (
	"log"
	"net/http"

	"cemap-quiz-service/internal/cache"

	"github.com/gorilla/websocket"
)

// ControlHandler is the cache-control channel: clients send lifecycle
// messages to the caching gateway over a websocket, mirroring the two
// control messages the offline layer accepts.
type ControlHandler struct {
	gateway  *cache.Gateway
	upgrader websocket.Upgrader
}

func NewControlHandler(gateway *cache.Gateway) *ControlHandler {
	return &ControlHandler{
		gateway: gateway,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type controlMessage struct {
	Type string `json:"type"`
}

type controlReply struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

// ServeWS upgrades the connection and dispatches control messages until the
// client hangs up.
func (h *ControlHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("control ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		var msg controlMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "skip-waiting":
			if err := h.gateway.ForceActivate(r.Context()); err != nil {
				_ = conn.WriteJSON(controlReply{Type: "error", Message: err.Error()})
				continue
			}
			_ = conn.WriteJSON(controlReply{Type: "activated"})
		case "clear-caches":
			if err := h.gateway.ClearCaches(r.Context()); err != nil {
				_ = conn.WriteJSON(controlReply{Type: "error", Message: err.Error()})
				continue
			}
			_ = conn.WriteJSON(controlReply{Type: "cleared"})
		default:
			_ = conn.WriteJSON(controlReply{Type: "error", Message: "unsupported message type"})
		}
	}
}
