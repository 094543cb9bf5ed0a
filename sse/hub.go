package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/kbukum/datafeed/logger"
)

// ErrHubStopped is returned by Publish after Stop.
var ErrHubStopped = errors.New("sse: hub stopped")

const (
	clientBuffer  = 64
	publishBuffer = 256
)

// Frame is one encoded event.
type Frame struct {
	Type string
	Data []byte
}

// Client is a connected subscriber.
type Client struct {
	id     string
	filter string
	frames chan Frame
}

// NewClient creates a client receiving events whose type matches filter.
// An empty filter matches everything.
func NewClient(id, filter string) *Client {
	if filter == "" {
		filter = "*"
	}
	return &Client{id: id, filter: filter, frames: make(chan Frame, clientBuffer)}
}

// ID returns the client id.
func (c *Client) ID() string { return c.id }

// Filter returns the event type filter.
func (c *Client) Filter() string { return c.filter }

// Frames delivers events until the client is unregistered.
func (c *Client) Frames() <-chan Frame { return c.frames }

func (c *Client) matches(eventType string) bool {
	ok, err := filepath.Match(c.filter, eventType)
	return err == nil && ok
}

// Hub fans events out to clients. Run must be running for registration and
// delivery to make progress.
type Hub struct {
	log *logger.Logger

	mu      sync.RWMutex
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	publish    chan Frame
	done       chan struct{}
	stopOnce   sync.Once

	published atomic.Int64
	dropped   atomic.Int64
}

// NewHub creates a stopped hub; start it with go hub.Run().
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:        log.WithComponent("sse"),
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		publish:    make(chan Frame, publishBuffer),
		done:       make(chan struct{}),
	}
}

// Run is the hub loop. It returns after Stop, closing every client.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAll()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.id] = c
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("client registered", logger.Fields("client_id", c.id, "filter", c.filter, "clients", n))

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c.id]; ok {
				delete(h.clients, c.id)
				close(c.frames)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("client unregistered", logger.Fields("client_id", c.id, "clients", n))

		case f := <-h.publish:
			h.deliver(f)
		}
	}
}

// Stop ends Run. It is safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Register adds c. It returns false when the hub is stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes c and closes its frame channel.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish encodes data as JSON and queues it for delivery. It does not
// block; when the queue is full the event is dropped.
func (h *Hub) Publish(eventType string, data any) error {
	select {
	case <-h.done:
		return ErrHubStopped
	default:
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: encode %s event: %w", eventType, err)
	}
	select {
	case h.publish <- Frame{Type: eventType, Data: payload}:
		h.published.Add(1)
	default:
		h.dropped.Add(1)
	}
	return nil
}

func (h *Hub) deliver(f Frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if !c.matches(f.Type) {
			continue
		}
		select {
		case c.frames <- f:
		default:
			h.dropped.Add(1)
			h.log.Warn("client buffer full, dropping event", logger.Fields("client_id", c.id, "type", f.Type))
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		close(c.frames)
		delete(h.clients, id)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Published returns the number of events accepted by Publish.
func (h *Hub) Published() int64 { return h.published.Load() }

// Dropped returns the number of events lost to full buffers.
func (h *Hub) Dropped() int64 { return h.dropped.Load() }

var _ Publisher = (*Hub)(nil)
