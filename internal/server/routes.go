package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"github.com/scythe504/skribblr-rooms/internal"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/status", s.StatusHandler).Methods(http.MethodGet)
	r.HandleFunc("/rooms-available", s.GetRoomToJoin).Methods(http.MethodGet)
	r.HandleFunc("/games/recent", s.RecentGames).Methods(http.MethodGet)
	r.Handle("/ws", s.ws)

	return s.corsMiddleware().Handler(r)
}

func (s *Server) corsMiddleware() *cors.Cors {
	origins := s.allowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("[writeJSON] error encoding response")
	}
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusData struct {
	Rooms         int   `json:"rooms"`
	Players       int   `json:"players"`
	Clients       int   `json:"clients"`
	UptimeSeconds int64 `json:"uptimeSeconds"`
}

func (s *Server) StatusHandler(w http.ResponseWriter, r *http.Request) {
	stats := s.games.Stats()
	data := statusData{
		Rooms:         stats.Rooms,
		Players:       stats.Players,
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	}
	if s.clients != nil {
		data.Clients = s.clients()
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) GetRoomToJoin(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()

	var resp internal.Response
	if code, ok := s.games.AvailableRoomCode(); ok {
		resp = internal.Response{
			StatusCode:    http.StatusOK,
			RespStartTime: startTime,
			Data:          code,
		}
	} else {
		resp = internal.Response{
			StatusCode:    http.StatusNotFound,
			RespStartTime: startTime,
			Data:          "No joinable rooms available",
		}
	}

	endTime := time.Now().UnixMilli()
	resp.RespEndTime = endTime
	resp.NetRespTime = endTime - startTime

	writeJSON(w, resp.StatusCode, resp)
}

const (
	defaultRecentGames = 20
	maxRecentGames     = 100
)

func (s *Server) RecentGames(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()

	if s.history == nil {
		writeJSON(w, http.StatusNotFound, internal.Response{
			StatusCode:    http.StatusNotFound,
			RespStartTime: startTime,
			Data:          "Game history is not enabled",
		})
		return
	}

	limit := defaultRecentGames
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, internal.Response{
				StatusCode:    http.StatusBadRequest,
				RespStartTime: startTime,
				Data:          "limit must be a positive integer",
			})
			return
		}
		limit = min(n, maxRecentGames)
	}

	games, err := s.history.RecentGameResults(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("[RecentGames] failed to load game results")
		writeJSON(w, http.StatusInternalServerError, internal.Response{
			StatusCode:    http.StatusInternalServerError,
			RespStartTime: startTime,
			Data:          "Internal server error",
		})
		return
	}
	if games == nil {
		games = []internal.GameRecord{}
	}

	endTime := time.Now().UnixMilli()
	writeJSON(w, http.StatusOK, internal.Response{
		StatusCode:    http.StatusOK,
		RespStartTime: startTime,
		RespEndTime:   endTime,
		NetRespTime:   endTime - startTime,
		Data:          games,
	})
}
