package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/kbukum/datafeed/logger"
)

// KeepAlive is the interval between comment lines on idle streams.
var KeepAlive = 30 * time.Second

// Serve streams events matching filter to w until the request ends or the
// hub stops.
func Serve(hub *Hub, w http.ResponseWriter, r *http.Request, clientID, filter string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	if filter == "" {
		filter = "*"
	}
	if _, err := filepath.Match(filter, ""); err != nil {
		http.Error(w, fmt.Sprintf("invalid filter %q", filter), http.StatusBadRequest)
		return
	}

	// Streams outlive the server's WriteTimeout.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		hub.log.Debug("could not clear write deadline", logger.Fields("client_id", clientID, logger.FieldError, err.Error()))
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	client := NewClient(clientID, filter)
	if !hub.Register(client) {
		http.Error(w, "event stream closed", http.StatusServiceUnavailable)
		return
	}
	defer hub.Unregister(client)

	hello, _ := json.Marshal(ConnectedEvent{ClientID: clientID, Filter: client.Filter()})
	writeFrame(w, Frame{Type: EventConnected, Data: hello})
	flusher.Flush()

	keepAlive := time.NewTicker(KeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case f, ok := <-client.Frames():
			if !ok {
				return
			}
			writeFrame(w, f)
			flusher.Flush()
		case <-keepAlive.C:
			_, _ = fmt.Fprintf(w, ": keepalive %d\n\n", time.Now().Unix())
			flusher.Flush()
		}
	}
}

func writeFrame(w http.ResponseWriter, f Frame) {
	_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", f.Type, f.Data)
}
