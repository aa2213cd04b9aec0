// Package ws owns the websocket side of change notifications: connection
// upgrades, the per-group membership registry and best-effort fan-out.
package ws

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Hub tracks connected clients and their broadcast-group memberships. All
// methods are safe for concurrent use; join and leave are idempotent.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]struct{}
	groups   map[string]map[*Client]struct{}
	upgrader websocket.Upgrader
}

// NewHub sets up an empty hub. checkOrigin guards the upgrade handshake; nil
// accepts any origin.
func NewHub(checkOrigin func(*http.Request) bool) *Hub {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		clients: make(map[*Client]struct{}),
		groups:  make(map[string]map[*Client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// ServeHTTP upgrades the connection and runs the client until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := newClient(h, conn)
	h.register(client)

	go client.writePump()
	go client.readPump()
}

// Join adds the client to a broadcast group. Joining twice is a no-op, so a
// client never receives duplicate deliveries of one event.
func (h *Hub) Join(group string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	members, ok := h.groups[group]
	if !ok {
		members = make(map[*Client]struct{})
		h.groups[group] = members
	}
	members[c] = struct{}{}
	log.Debug().Str("client", c.id).Str("group", group).Msg("client joined group")
}

// Leave removes the client from a broadcast group. Leaving a group the client
// never joined is a no-op.
func (h *Hub) Leave(group string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.groups[group]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
	log.Debug().Str("client", c.id).Str("group", group).Msg("client left group")
}

// Broadcast delivers the payload to every current member of the group.
// Clients whose send buffers are full miss the frame; they resynchronize by
// re-fetching, never by replay.
func (h *Hub) Broadcast(group string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.groups[group] {
		select {
		case c.send <- payload:
		default:
		}
	}
}

// Members reports the current size of a broadcast group.
func (h *Hub) Members(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.conn.Close()
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	log.Debug().Str("client", c.id).Msg("client connected")
}

// unregister drops the client from every group and closes its send channel.
// The channel is closed under the write lock so in-flight broadcasts, which
// hold the read lock while sending, never hit a closed channel.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	for group, members := range h.groups {
		delete(members, c)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
	close(c.send)
	log.Debug().Str("client", c.id).Msg("client disconnected")
}
