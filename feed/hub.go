// Package feed streams simulation frames to remote viewers over websockets.
package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub maintains the set of active clients and broadcasts frames to them.
// The simulation publishes from its own goroutine; Run owns the client set.
type Hub struct {
	runID string

	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	clientBuf  int
	done       chan struct{}

	mu    sync.Mutex
	count int

	upgrader websocket.Upgrader
}

// NewHub creates a hub. buffer bounds both the pending broadcast queue and
// each client's send queue; slow clients are dropped when theirs fills up.
func NewHub(runID string, buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		runID:      runID,
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, buffer),
		register:   make(chan *client),
		unregister: make(chan *client),
		clientBuf:  buffer,
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Viewers are served from anywhere.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Run handles client connections and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	hello, err := json.Marshal(Hello{Type: TypeHello, RunID: h.runID})
	if err != nil {
		slog.Error("feed: marshal hello", "error", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			slog.Info("feed hub stopped")
			return
		case c := <-h.register:
			h.clients[c] = true
			h.setCount(len(h.clients))
			c.send <- hello
			slog.Info("feed client connected", "remote", c.conn.RemoteAddr().String())
		case c := <-h.unregister:
			if h.clients[c] {
				h.drop(c)
				slog.Info("feed client disconnected", "remote", c.conn.RemoteAddr().String())
			}
		case message := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					slog.Warn("feed client too slow, dropping", "remote", c.conn.RemoteAddr().String())
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
	h.setCount(len(h.clients))
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Publish queues a pre-encoded message for all clients. It never blocks: if
// the queue is full the message is dropped and false is returned.
func (h *Hub) Publish(message []byte) bool {
	select {
	case h.broadcast <- message:
		return true
	default:
		return false
	}
}

// PublishFrame encodes f and publishes it.
func (h *Hub) PublishFrame(f Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	h.Publish(data)
	return nil
}

// ServeWS upgrades the request and registers the connection with the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("feed: upgrade failed", "error", err)
		return
	}
	c := &client{hub: h, conn: conn, send: make(chan []byte, h.clientBuf+1)}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	case <-r.Context().Done():
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}
