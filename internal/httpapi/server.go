package httpapi

import (
	"context"
	"net/http"
	"time"

	"songcatalog/internal/app/songs"
	"songcatalog/internal/app/stats"
	"songcatalog/internal/store"
)

// SongService captures the song operations needed by the HTTP handlers.
type SongService interface {
	Create(ctx context.Context, in songs.CreateInput) (store.Song, error)
	List(ctx context.Context, q store.ListQuery) ([]store.Song, int64, error)
	Get(ctx context.Context, id string) (store.Song, error)
	Update(ctx context.Context, id string, in songs.UpdateInput) (store.Song, error)
	Delete(ctx context.Context, id string) (store.Song, error)
}

// StatsService describes the aggregate statistics workflows.
type StatsService interface {
	Overview(ctx context.Context) (stats.Overview, error)
	Recent(ctx context.Context, n int) ([]store.Song, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	songs   SongService
	stats   StatsService
	ws      http.Handler
	started time.Time
}

// New configures a Server. ws may be nil to disable the websocket endpoint.
func New(songSvc SongService, statsSvc StatsService, ws http.Handler) *Server {
	return &Server{
		songs:   songSvc,
		stats:   statsSvc,
		ws:      ws,
		started: time.Now(),
	}
}

// Routes exposes the HTTP handlers for the song catalog.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/v1/health", s.handleHealth)

	mux.HandleFunc("POST /api/v1/songs", s.handleCreateSong)
	mux.HandleFunc("GET /api/v1/songs", s.handleListSongs)
	mux.HandleFunc("GET /api/v1/songs/stats", s.handleStats)
	mux.HandleFunc("GET /api/v1/songs/stats/recent", s.handleRecentSongs)
	mux.HandleFunc("GET /api/v1/songs/{id}", s.handleGetSong)
	mux.HandleFunc("PUT /api/v1/songs/{id}", s.handleUpdateSong)
	mux.HandleFunc("DELETE /api/v1/songs/{id}", s.handleDeleteSong)

	if s.ws != nil {
		mux.Handle("GET /ws", s.ws)
	}

	mux.HandleFunc("/", s.handleNotFound)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"message":   "API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    int64(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "cannot find "+r.URL.Path+" on this server")
}
