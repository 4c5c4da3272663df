package bridge

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler accepts the carrier's media-stream WebSocket connections and runs
// one session per connection.
type Handler struct {
	dialer   AgentDialer
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHandler creates the media-stream endpoint handler.
func NewHandler(dialer AgentDialer, log *zap.Logger) *Handler {
	return &Handler{
		dialer: dialer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The carrier's media servers connect from rotating hosts.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// RegisterRoutes attaches the stream endpoint to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/voice/stream", h.handleStream)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("media stream upgrade failed", zap.Error(err))
		return
	}

	session := NewSession(conn, h.dialer, h.log)
	if err := session.Run(r.Context()); err != nil {
		h.log.Error("session ended with error", zap.Error(err))
	}
}
