package ws

import "encoding/json"

// Inbound event names.
const (
	EventJoin             = "join"
	EventSendMessage      = "send-message"
	EventTyping           = "typing"
	EventSendNotification = "send-notification"
)

// Outbound event names. Events pushed by the services layer
// (receive-message, receive-notification, new_notification) are declared
// next to their payloads in the services package.
const (
	EventJoined       = "joined"
	EventJoinError    = "join-error"
	EventUsersOnline  = "users-online"
	EventMessageSent  = "message-sent"
	EventMessageError = "message-error"
	EventUserTyping   = "user-typing"
)

// Frame is the wire envelope for every websocket event in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JoinData is the payload of an inbound join event.
type JoinData struct {
	UserID uint `json:"user_id"`
}

// JoinedData acknowledges a successful join.
type JoinedData struct {
	UserID      uint   `json:"user_id"`
	OnlineUsers []uint `json:"online_users"`
}

// TypingData is the payload of an inbound typing event.
type TypingData struct {
	ReceiverID uint `json:"receiver_id"`
	IsTyping   bool `json:"is_typing"`
}

// SendNotificationData is the payload of an inbound send-notification event:
// a client-initiated notification relayed verbatim to the receiver.
type SendNotificationData struct {
	ReceiverID   uint            `json:"receiver_id"`
	Notification json.RawMessage `json:"notification"`
}

// UserTypingData is the typing signal forwarded to the receiver.
type UserTypingData struct {
	SenderID uint `json:"sender_id"`
	IsTyping bool `json:"is_typing"`
}

// ErrorData carries an error reason back to the originating connection.
type ErrorData struct {
	Error string `json:"error"`
}
