package websocket

import (
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/skribblr-rooms/internal/utils"
	"golang.org/x/time/rate"
)

// =============================================================================
// WEBSOCKET CONNECTION HANDLING
// =============================================================================

type Options struct {
	// AllowedOrigins limits the Origin header; empty or "*" allows any.
	AllowedOrigins []string
	// MessageRate and MessageBurst bound inbound frames per connection.
	MessageRate  float64
	MessageBurst int
}

func newUpgrader(origins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(origins) == 0 || slices.Contains(origins, "*") {
				return true
			}
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(origins, origin)
		},
	}
}

// HandleWebSocket upgrades the request and runs the connection's pumps. The
// client joins a room later by sending a JOIN message.
func (h *Hub) HandleWebSocket(handler MessageHandler, opts Options) http.HandlerFunc {
	upgrader := newUpgrader(opts.AllowedOrigins)

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("[HandleWebSocket] upgrade failed")
			return
		}

		var limiter *rate.Limiter
		if opts.MessageRate > 0 {
			limiter = rate.NewLimiter(rate.Limit(opts.MessageRate), max(opts.MessageBurst, 1))
		}

		client := newClient(h, conn, utils.GenerateID(), limiter)
		h.register(client)
		log.Info().Str("conn", client.Id).Str("remote", r.RemoteAddr).Msg("[HandleWebSocket] client connected")

		go client.WritePump()
		go client.ReadPump(handler)
	}
}
