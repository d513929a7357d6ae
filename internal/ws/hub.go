package ws

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/metrics"
)

// Hub is the presence registry: the process-wide mapping from user ID to
// that user's single live connection. It is shared between the websocket
// connection handlers and the HTTP-triggered fan-out paths, so every access
// goes through its mutex. It implements services.Presence.
//
// At most one connection is mapped per user: a new join for an already-mapped
// user supersedes the earlier connection (last writer wins), and a leave only
// removes the entry when it still belongs to the leaving connection, so a
// stale disconnect can never evict a newer mapping.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool // every open connection, joined or not
	users   map[uint]*Client // joined users only
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		users:   make(map[uint]*Client),
	}
}

// Register adds a freshly upgraded connection. The connection has no presence
// entry until it joins.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	metrics.WsConnections.Inc()
}

// Join maps the user to this connection. An existing mapping for the same
// user is superseded: the old connection stays open but is no longer
// addressable, and its eventual disconnect is a presence no-op.
func (h *Hub) Join(userID uint, c *Client) {
	h.mu.Lock()
	c.userID = userID
	c.joined = true
	h.users[userID] = c
	metrics.OnlineUsers.Set(float64(len(h.users)))
	h.mu.Unlock()
	log.Info().Uint("user_id", userID).Str("conn_id", c.id).Msg("user joined")
}

// Unregister removes the connection and, when it still owns its user's
// presence entry, that entry too. It reports whether a presence entry was
// removed, so the caller knows to broadcast the updated online set. Calling
// it for an already-removed connection is a no-op.
func (h *Hub) Unregister(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.clients[c] {
		return false
	}
	delete(h.clients, c)
	close(c.send)
	metrics.WsConnections.Dec()

	if c.joined && h.users[c.userID] == c {
		delete(h.users, c.userID)
		metrics.OnlineUsers.Set(float64(len(h.users)))
		log.Info().Uint("user_id", c.userID).Str("conn_id", c.id).Msg("user left")
		return true
	}
	return false
}

// Lookup returns the live connection for a user, if any.
func (h *Hub) Lookup(userID uint) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.users[userID]
	return c, ok
}

// OnlineUsers returns the IDs of all users with a joined connection, sorted
// for stable payloads.
func (h *Hub) OnlineUsers() []uint {
	h.mu.RLock()
	ids := make([]uint, 0, len(h.users))
	for id := range h.users {
		ids = append(ids, id)
	}
	h.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Emit pushes one event to the user's live connection. It returns false when
// the user has no presence entry or the connection's outbound buffer is full;
// either way the push is over, there is no waiting and no retry.
func (h *Hub) Emit(userID uint, event string, data interface{}) bool {
	frame, err := marshalFrame(event, data)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("marshal frame")
		return false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.users[userID]
	if !ok {
		return false
	}
	return c.enqueue(frame)
}

// BroadcastOnlineUsers sends the current online-user set to every open
// connection, joined or not.
func (h *Hub) BroadcastOnlineUsers() {
	h.broadcast(EventUsersOnline, h.OnlineUsers())
}

func (h *Hub) broadcast(event string, data interface{}) {
	frame, err := marshalFrame(event, data)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("marshal broadcast frame")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.enqueue(frame)
	}
}

func marshalFrame(event string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: raw})
}
