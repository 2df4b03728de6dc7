package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// eventStream writes Server-Sent Events. Each event carries a sequence id so a
// client can tell where a dropped stream stopped.
type eventStream struct {
	w   http.ResponseWriter
	rc  *http.ResponseController
	seq int
}

func openEventStream(w http.ResponseWriter) *eventStream {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	return &eventStream{w: w, rc: http.NewResponseController(w)}
}

// send writes one event and flushes it to the client
func (es *eventStream) send(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event, err)
	}

	es.seq++
	if _, err := fmt.Fprintf(es.w, "event: %s\ndata: %s\nid: %d\n\n", event, data, es.seq); err != nil {
		return err
	}
	return es.rc.Flush()
}

func (es *eventStream) fail(message string) {
	_ = es.send("error", map[string]string{"error": message})
}

// complete ends an optimisation stream with its totals
func (es *eventStream) complete(suggestions, degraded int) {
	_ = es.send("complete", map[string]int{
		"suggestions": suggestions,
		"degraded":    degraded,
	})
}
