package httpapi

import (
	"encoding/json"
	"net/http"

	"songcatalog/internal/app/songs"
	"songcatalog/internal/query"
	"songcatalog/internal/store"
)

func (s *Server) handleCreateSong(w http.ResponseWriter, r *http.Request) {
	var in songs.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	song, err := s.songs.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dataResponse{Success: true, Data: song})
}

func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	q, err := query.Parse(r.URL.Query())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	matched, total, err := s.songs.List(r.Context(), q)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if matched == nil {
		matched = []store.Song{}
	}

	totalPages := (total + q.Limit - 1) / q.Limit

	writeJSON(w, http.StatusOK, listResponse{
		Success: true,
		Count:   len(matched),
		Total:   total,
		Pagination: pagination{
			Page:       q.Page,
			Limit:      q.Limit,
			TotalPages: totalPages,
			HasNext:    q.Page < totalPages,
			HasPrev:    q.Page > 1,
		},
		Data: matched,
	})
}

func (s *Server) handleGetSong(w http.ResponseWriter, r *http.Request) {
	song, err := s.songs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: song})
}

func (s *Server) handleUpdateSong(w http.ResponseWriter, r *http.Request) {
	var in songs.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	song, err := s.songs.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: song})
}

func (s *Server) handleDeleteSong(w http.ResponseWriter, r *http.Request) {
	if _, err := s.songs.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Song deleted"})
}
