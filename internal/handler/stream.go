package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// keepAliveInterval is how often an idle stream sends a comment line, so
// proxies do not close it for inactivity.
const keepAliveInterval = 25 * time.Second

// streamJSON writes each value from updates as a server-sent event until the
// channel closes or the client goes away.
//
// SERVER-SENT EVENTS:
// The page opens an EventSource; each event is a "data:" line holding the
// whole JSON list, followed by a blank line. The browser reconnects on its
// own if the connection drops.
//
// The server's WriteTimeout would cut a long-lived stream, so the deadline
// is cleared for this response only.
func streamJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, updates <-chan T) {
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		logger.Warn("stream: clearing write deadline", slog.String("error", err.Error()))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		logger.Error("stream: response cannot be flushed", slog.String("error", err.Error()))
		return
	}

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case v, ok := <-updates:
			if !ok {
				return
			}
			b, err := json.Marshal(v)
			if err != nil {
				logger.Error("stream: encoding event", slog.String("error", err.Error()))
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}

		if err := rc.Flush(); err != nil {
			return
		}
	}
}
