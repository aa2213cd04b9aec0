package main

import (
	"net/http"
	"strings"

	"songcatalog/internal/app/songs"
	"songcatalog/internal/app/stats"
	"songcatalog/internal/http/middleware"
	"songcatalog/internal/httpapi"
	"songcatalog/internal/notify"
	"songcatalog/internal/store"
	"songcatalog/internal/ws"
)

func newHTTPHandler(cfg Config, dataStore *store.Mongo, hub *ws.Hub, events notify.Broadcaster) http.Handler {
	songSvc := songs.New(dataStore, events)
	statsSvc := stats.New(dataStore)

	handler := httpapi.New(songSvc, statsSvc, hub).Routes()
	handler = middleware.Recovery()(handler)
	handler = middleware.RequestLogging()(handler)
	handler = middleware.CORS(cfg.AllowedOrigins)(handler)
	return handler
}

// originChecker guards the websocket handshake with the same origin policy
// as the CORS middleware. Browsers send an Origin header on upgrades; other
// clients, which send none, are let through.
func originChecker(allowedOrigins []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowedOrigins {
			o = strings.TrimSpace(o)
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}
