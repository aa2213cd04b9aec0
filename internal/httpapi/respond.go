package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"songcatalog/internal/app/stats"
	"songcatalog/internal/store"
)

// dataResponse is the success envelope every API response uses.
type dataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// errorResponse is the uniform failure envelope: status is "fail" for
// client-side errors and "error" for server-side ones.
type errorResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type pagination struct {
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	TotalPages int64 `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

type listResponse struct {
	Success    bool         `json:"success"`
	Count      int          `json:"count"`
	Total      int64        `json:"total"`
	Pagination pagination   `json:"pagination"`
	Data       []store.Song `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("write response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	category := "error"
	if status < http.StatusInternalServerError {
		category = "fail"
	}
	writeJSON(w, status, errorResponse{Success: false, Status: category, Message: message})
}

// writeServiceError maps service-layer failures onto the response envelope.
// Store failures stay opaque to the client; the cause is only logged.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr store.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, store.ErrDuplicateTitle):
		writeError(w, http.StatusConflict, store.ErrDuplicateTitle.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, store.ErrNotFound.Error())
	case errors.Is(err, stats.ErrUnavailable):
		log.Error().Err(err).Msg("statistics request failed")
		writeError(w, http.StatusInternalServerError, stats.ErrUnavailable.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
