package models

import "time"

// Message type values derived from the presence of content and attachment.
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeMixed = "mixed"
)

// Message represents a direct message between two users (PostgreSQL)
type Message struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	SenderID    uint       `json:"sender_id" gorm:"index:idx_messages_conversation,priority:1"`
	ReceiverID  uint       `json:"receiver_id" gorm:"index:idx_messages_conversation,priority:2"`
	Content     string     `json:"content"`
	Image       string     `json:"image,omitempty"`
	MessageType string     `json:"message_type" gorm:"size:10;default:text"`
	IsRead      bool       `json:"is_read" gorm:"default:false;index"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index:idx_messages_conversation,priority:3"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// DeriveMessageType returns the message type for a content/attachment pair:
// image when only an attachment is present, mixed when both are, text otherwise.
func DeriveMessageType(content, image string) string {
	switch {
	case image != "" && content != "":
		return MessageTypeMixed
	case image != "":
		return MessageTypeImage
	default:
		return MessageTypeText
	}
}

// SendMessageRequest defines the request body for sending a direct message
type SendMessageRequest struct {
	ReceiverID uint   `json:"receiver_id" validate:"required"`
	Content    string `json:"content,omitempty"`
	Image      string `json:"image,omitempty"`
}

// ChatPartner is one entry in the chat-user list: a user the authenticated
// user has exchanged messages with, plus the most recent message between them.
type ChatPartner struct {
	User        UserCompact  `json:"user"`
	LastMessage *LastMessage `json:"last_message"`
}

// LastMessage summarizes the newest message of a conversation.
type LastMessage struct {
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	IsSender  bool      `json:"is_sender"`
}
