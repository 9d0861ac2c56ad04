package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/shahar-caura/plantid/internal/view"
)

// SSEHub fans out pane snapshots to connected SSE clients. It implements
// view.Notifier.
type SSEHub struct {
	logger *slog.Logger

	mu      sync.Mutex
	clients map[chan []byte]struct{}
	last    []byte
	version uint64
}

var _ view.Notifier = (*SSEHub)(nil)

// NewSSEHub creates an empty SSEHub.
func NewSSEHub(logger *slog.Logger) *SSEHub {
	return &SSEHub{
		logger:  logger,
		clients: make(map[chan []byte]struct{}),
	}
}

// Changed broadcasts snap to every client. Snapshots older than the last
// one seen are dropped.
func (h *SSEHub) Changed(snap view.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		h.logger.Error("sse: encoding snapshot", "err", err)
		return
	}
	h.broadcast(snap.Version, data)
}

func (h *SSEHub) broadcast(version uint64, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if version < h.version {
		return
	}
	h.version = version
	h.last = data
	for ch := range h.clients {
		select {
		case ch <- data:
		default:
			// Slow client; drop this event.
		}
	}
}

// addClient registers ch and primes it with the latest snapshot so a page
// rendered just before a change still notices it.
func (h *SSEHub) addClient(ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[ch] = struct{}{}
	if h.last != nil {
		ch <- h.last
	}
}

func (h *SSEHub) removeClient(ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, ch)
	close(ch)
}

// ServeHTTP implements http.Handler for SSE connections.
func (h *SSEHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan []byte, 32)
	h.addClient(ch)
	defer h.removeClient(ch)

	keepalive := time.NewTicker(20 * time.Second)
	defer keepalive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-keepalive.C:
			_, _ = fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case data := <-ch:
			_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
