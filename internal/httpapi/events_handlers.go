package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"jobhunt-scout/internal/events"
)

const defaultHeartbeat = 25 * time.Second

type EventsHandler struct {
	Hub *events.Hub
	// Heartbeat is the keep-alive comment interval.
	Heartbeat time.Duration
}

// ServeSSE streams hub events until the client goes away. The first
// message is a "hello" event so clients know the stream is live.
func (h EventsHandler) ServeSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, r, http.StatusInternalServerError, "stream_unsupported", "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := h.Hub.Subscribe()
	defer h.Hub.Unsubscribe(ch)

	every := h.Heartbeat
	if every <= 0 {
		every = defaultHeartbeat
	}
	beat := time.NewTicker(every)
	defer beat.Stop()

	writeSSE(w, events.MakeEvent(RequestIDFrom(r.Context()), "hello", 1, map[string]int{"subscribers": h.Hub.Subscribers()}))
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-beat.C:
			_, _ = io.WriteString(w, ": keepalive\n\n")
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			writeSSE(w, msg)
			flusher.Flush()
		}
	}
}

func writeSSE(w io.Writer, data string) {
	fmt.Fprintf(w, "event: message\ndata: %s\n\n", data)
}
