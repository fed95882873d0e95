package broadcast

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/example/room-session-demo/modules/dispatch"
	"github.com/gofiber/contrib/websocket"
)

// sendQueueSize bounds the per-client outbound buffer. A client that
// cannot drain this many frames is dropped rather than allowed to block
// delivery to other rooms.
const sendQueueSize = 64

// client is one attached WebSocket connection with its own buffered
// send queue and writer goroutine, so a slow socket only stalls itself.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// writePump drains the send queue onto the socket.
func (c *client) writePump() {
	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("[broadcast] Failed to send to client %s: %v", c.id, err)
			break
		}
	}
	_ = c.conn.Close()
}

// Hub is the connection table the dispatcher fans out through. It knows
// nothing about rooms; target sets come from the caller.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	done    chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*client),
		done:    make(chan struct{}),
	}
}

// Run blocks until the context is canceled, then closes all clients.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	log.Println("[broadcast] Shutting down hub...")
	h.closeAllClients()
	close(h.done)
}

// Wait blocks until the hub has stopped.
func (h *Hub) Wait() {
	<-h.done
}

// Attach registers a connection and starts its writer.
func (h *Hub) Attach(id string, conn *websocket.Conn) {
	c := &client{
		id:   id,
		conn: conn,
		send: make(chan []byte, sendQueueSize),
	}

	h.mu.Lock()
	h.clients[id] = c
	h.mu.Unlock()

	go c.writePump()
	log.Printf("[broadcast] Client %s attached", id)
}

// Detach removes a connection and stops its writer. Detaching an
// unknown ID is a no-op.
func (h *Hub) Detach(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
	}
	h.mu.Unlock()

	if ok {
		close(c.send)
		log.Printf("[broadcast] Client %s detached", id)
	}
}

// Unicast delivers an envelope to a single connection.
func (h *Hub) Unicast(id string, env dispatch.Envelope) {
	h.Multicast([]string{id}, env)
}

// Multicast delivers an envelope to every listed connection. Envelopes
// enqueued from the same goroutine arrive at each client in enqueue
// order. Clients whose queue is full are dropped afterwards.
func (h *Hub) Multicast(ids []string, env dispatch.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		log.Printf("[broadcast] Failed to marshal %s envelope: %v", env.Event, err)
		return
	}

	var dropped []string
	h.mu.RLock()
	for _, id := range ids {
		c, ok := h.clients[id]
		if !ok {
			continue
		}
		select {
		case c.send <- data:
		default:
			dropped = append(dropped, id)
		}
	}
	h.mu.RUnlock()

	for _, id := range dropped {
		log.Printf("[broadcast] Client %s send queue full, dropping", id)
		h.Detach(id)
	}
}

// ClientCount returns the number of attached connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.clients {
		close(c.send)
	}
	h.clients = make(map[string]*client)
}
