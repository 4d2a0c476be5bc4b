package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/skribblr-rooms/internal"
	"github.com/scythe504/skribblr-rooms/internal/game"
)

// GameService is the part of the game the HTTP surface reads from.
type GameService interface {
	Stats() game.Stats
	AvailableRoomCode() (string, bool)
}

// History serves finished games. It is optional.
type History interface {
	RecentGameResults(ctx context.Context, limit int) ([]internal.GameRecord, error)
}

type Server struct {
	games          GameService
	history        History
	ws             http.Handler
	clients        func() int
	allowedOrigins []string
	startedAt      time.Time

	httpServer *http.Server
}

// NewServer wires the routes. ws serves websocket upgrades and clients
// reports the number of live connections.
func NewServer(addr string, games GameService, ws http.Handler, clients func() int, allowedOrigins []string) *Server {
	s := &Server{
		games:          games,
		ws:             ws,
		clients:        clients,
		allowedOrigins: allowedOrigins,
		startedAt:      time.Now(),
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.RegisterRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute,
	}
	return s
}

// WithHistory enables GET /games/recent.
func (s *Server) WithHistory(h History) *Server {
	s.history = h
	return s
}

// ListenAndServe blocks until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.httpServer.Addr).Msg("[Server] listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info().Msg("[Server] shutting down")
	return s.httpServer.Shutdown(shutdownCtx)
}
