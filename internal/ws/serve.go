package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/models"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/repositories"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Gateway upgrades HTTP requests to websocket connections and dispatches
// their inbound events. A connection starts unaddressed; it gains a presence
// entry only after a join with a known user ID.
type Gateway struct {
	hub            *Hub
	chatService    *services.ChatService
	userRepository repositories.UserRepository
}

// NewGateway creates a new Gateway
func NewGateway(hub *Hub, chatService *services.ChatService, userRepo repositories.UserRepository) *Gateway {
	return &Gateway{
		hub:            hub,
		chatService:    chatService,
		userRepository: userRepo,
	}
}

// Serve handles the websocket endpoint.
func (g *Gateway) Serve(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil
	}
	client := &Client{
		hub:  g.hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		id:   uuid.NewString(),
	}
	g.hub.Register(client)

	go client.writePump()
	client.readPump(g.dispatch)
	return nil
}

func (g *Gateway) dispatch(c *Client, frame Frame) {
	switch frame.Event {
	case EventJoin:
		g.handleJoin(c, frame.Data)
	case EventSendMessage:
		g.handleSendMessage(c, frame.Data)
	case EventTyping:
		g.handleTyping(c, frame.Data)
	case EventSendNotification:
		g.handleSendNotification(c, frame.Data)
	default:
		log.Debug().Str("event", frame.Event).Str("conn_id", c.id).Msg("unknown event")
	}
}

func (g *Gateway) handleJoin(c *Client, data json.RawMessage) {
	var join JoinData
	if err := json.Unmarshal(data, &join); err != nil || join.UserID == 0 {
		c.Emit(EventJoinError, ErrorData{Error: "invalid join payload"})
		return
	}
	exists, err := g.userRepository.UserExists(join.UserID)
	if err != nil {
		log.Error().Err(err).Uint("user_id", join.UserID).Msg("join user lookup")
		c.Emit(EventJoinError, ErrorData{Error: "join failed"})
		return
	}
	if !exists {
		c.Emit(EventJoinError, ErrorData{Error: services.ErrUnknownUser.Error()})
		return
	}

	g.hub.Join(join.UserID, c)
	c.Emit(EventJoined, JoinedData{UserID: join.UserID, OnlineUsers: g.hub.OnlineUsers()})
	g.hub.BroadcastOnlineUsers()
}

func (g *Gateway) handleSendMessage(c *Client, data json.RawMessage) {
	if !c.joined {
		c.Emit(EventMessageError, ErrorData{Error: "join required"})
		return
	}
	var req models.SendMessageRequest
	if err := json.Unmarshal(data, &req); err != nil {
		c.Emit(EventMessageError, ErrorData{Error: "invalid message payload"})
		return
	}

	// The connection dropping must not cancel an in-flight save, so the
	// pipeline does not run under the connection's lifetime.
	message, err := g.chatService.SendMessage(context.Background(), c.userID, req)
	if err != nil {
		reason := "failed to send message"
		if errors.Is(err, services.ErrReceiverRequired) || errors.Is(err, services.ErrEmptyMessage) {
			reason = err.Error()
		} else {
			log.Error().Err(err).Uint("sender_id", c.userID).Msg("send message")
		}
		c.Emit(EventMessageError, ErrorData{Error: reason})
		return
	}
	c.Emit(EventMessageSent, services.DeliveredMessage{Message: *message, IsSender: true})
}

// handleSendNotification relays a client-built notification payload to the
// receiver's live connection, unchanged. Like typing, nothing is persisted
// and an absent receiver silently misses it.
func (g *Gateway) handleSendNotification(c *Client, data json.RawMessage) {
	if !c.joined {
		return
	}
	var relay SendNotificationData
	if err := json.Unmarshal(data, &relay); err != nil || relay.ReceiverID == 0 {
		return
	}
	g.hub.Emit(relay.ReceiverID, services.EventReceiveNotification, relay.Notification)
}

func (g *Gateway) handleTyping(c *Client, data json.RawMessage) {
	// An un-joined connection has no sender identity; the signal is discarded.
	if !c.joined {
		return
	}
	var typing TypingData
	if err := json.Unmarshal(data, &typing); err != nil || typing.ReceiverID == 0 {
		return
	}
	g.hub.Emit(typing.ReceiverID, EventUserTyping, UserTypingData{
		SenderID: c.userID,
		IsTyping: typing.IsTyping,
	})
}
