package services

import "time"

// Events pushed to recipients over their live connection.
const (
	EventReceiveMessage      = "receive-message"
	EventReceiveNotification = "receive-notification"
	EventNewNotification     = "new_notification"
)

// Presence is the registry of currently reachable users. It is the single
// piece of state shared between the websocket connection handlers and the
// HTTP-triggered fan-out paths; the ws.Hub implements it.
//
// Emit attempts a best-effort push to the user's live connection. It returns
// false when the user is not present or the push could not be handed off;
// absence of a recipient is a normal outcome, not an error, so there is
// nothing to retry and no error to return. The durable record written before
// the push is the recovery path.
type Presence interface {
	Emit(userID uint, event string, data interface{}) bool
	OnlineUsers() []uint
}

// MessageNotificationPayload is the derived notification pushed alongside a
// delivered direct message. Message holds a bounded preview, not the full text.
type MessageNotificationPayload struct {
	Type       string    `json:"type"`
	SenderID   uint      `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// NotificationPayload is the live payload pushed by the fan-out service.
type NotificationPayload struct {
	Type         string    `json:"type"`
	Message      string    `json:"message"`
	PostID       string    `json:"post_id"`
	FromUserID   uint      `json:"from_user"`
	FromUserName string    `json:"from_user_name"`
	CreatedAt    time.Time `json:"created_at"`
}
