package httpapi

import (
	"net/http"

	"songcatalog/internal/app/stats"
	"songcatalog/internal/store"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	overview, err := s.stats.Overview(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: overview})
}

func (s *Server) handleRecentSongs(w http.ResponseWriter, r *http.Request) {
	recent, err := s.stats.Recent(r.Context(), stats.DefaultRecent)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if recent == nil {
		recent = []store.Song{}
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool         `json:"success"`
		Count   int          `json:"count"`
		Data    []store.Song `json:"data"`
	}{Success: true, Count: len(recent), Data: recent})
}
