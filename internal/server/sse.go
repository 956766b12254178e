package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// eventStream writes Server-Sent Events. Every event carries an increasing id
// so a client can tell whether it missed one after reconnecting.
type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	retry   time.Duration
	seq     int
}

// newEventStream prepares w for streaming. The first event also tells the
// client how long to wait before reconnecting.
func newEventStream(w http.ResponseWriter, retry time.Duration) (*eventStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	return &eventStream{w: w, flusher: flusher, retry: retry}, nil
}

// send writes one named event with a JSON payload
func (e *eventStream) send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if e.seq == 0 && e.retry > 0 {
		if _, err := fmt.Fprintf(e.w, "retry: %d\n", e.retry.Milliseconds()); err != nil {
			return err
		}
	}
	e.seq++
	if _, err := fmt.Fprintf(e.w, "id: %d\nevent: %s\ndata: %s\n\n", e.seq, event, payload); err != nil {
		return err
	}
	e.flusher.Flush()
	return nil
}

// comment writes a line clients ignore; proxies see traffic and keep the
// connection open.
func (e *eventStream) comment(text string) error {
	if _, err := fmt.Fprintf(e.w, ": %s\n\n", text); err != nil {
		return err
	}
	e.flusher.Flush()
	return nil
}
