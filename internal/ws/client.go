package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 1 << 20 // 1MB
	sendBufferSize = 256
)

// Client is one websocket connection. Its id distinguishes it from any other
// connection the same user may open; the presence registry keys leave
// operations on it so a stale disconnect cannot evict a newer connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	id   string

	// set on join, under the hub lock; read afterwards only by the
	// connection's own read loop and by the hub.
	userID uint
	joined bool
}

// Emit marshals and enqueues one event frame for this connection. A full
// outbound buffer drops the frame; delivery over a live connection is
// best-effort by contract.
func (c *Client) Emit(event string, data interface{}) bool {
	frame, err := marshalFrame(event, data)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("marshal frame")
		return false
	}
	return c.enqueue(frame)
}

func (c *Client) enqueue(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		log.Warn().Str("conn_id", c.id).Msg("outbound buffer full, frame dropped")
		return false
	}
}

// readPump consumes inbound frames and hands them to the gateway dispatcher.
// It owns the connection teardown: on any read error the connection is
// unregistered and, if it held its user's presence entry, the online set is
// re-broadcast.
func (c *Client) readPump(dispatch func(*Client, Frame)) {
	defer func() {
		if c.hub.Unregister(c) {
			c.hub.BroadcastOnlineUsers()
		}
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil || frame.Event == "" {
			continue
		}
		dispatch(c, frame)
	}
}

// writePump drains the outbound buffer to the connection and keeps it alive
// with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
