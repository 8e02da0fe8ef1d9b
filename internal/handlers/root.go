package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Welcome serves the API root.
func Welcome(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "welcome to the naija-emoji RESTful Api")
}

// Healthz reports 200 while db answers a ping.
func Healthz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			writeMessage(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		writeMessage(w, http.StatusOK, "ok")
	}
}
