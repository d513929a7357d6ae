package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/metrics"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/models"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/repositories"
)

// previewLimit bounds the text carried in a message's derived notification.
const previewLimit = 50

// ChatService owns the direct-message delivery pipeline: durable persistence
// first, then a best-effort live push to the receiver. Both the websocket
// send-message event and the REST fallback path go through it.
type ChatService struct {
	messageRepository repositories.MessageRepository
	userRepository    repositories.UserRepository
	presence          Presence
}

// NewChatService creates a new ChatService
func NewChatService(messageRepo repositories.MessageRepository, userRepo repositories.UserRepository, presence Presence) *ChatService {
	return &ChatService{
		messageRepository: messageRepo,
		userRepository:    userRepo,
		presence:          presence,
	}
}

// DeliveredMessage is a persisted message tagged with the perspective of the
// connection it is pushed to.
type DeliveredMessage struct {
	models.Message
	IsSender bool `json:"is_sender"`
}

// SendMessage validates, persists and then best-effort delivers a direct
// message. A persistence failure aborts and is returned to the caller; a
// failed or impossible live push never rolls the persisted message back.
func (s *ChatService) SendMessage(ctx context.Context, senderID uint, req models.SendMessageRequest) (*models.Message, error) {
	if req.ReceiverID == 0 {
		return nil, ErrReceiverRequired
	}
	if req.Content == "" && req.Image == "" {
		return nil, ErrEmptyMessage
	}

	message := &models.Message{
		SenderID:    senderID,
		ReceiverID:  req.ReceiverID,
		Content:     req.Content,
		Image:       req.Image,
		MessageType: models.DeriveMessageType(req.Content, req.Image),
	}

	if err := s.messageRepository.CreateMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}
	metrics.MessagesTotal.Inc()

	delivered := s.presence.Emit(req.ReceiverID, EventReceiveMessage, DeliveredMessage{
		Message:  *message,
		IsSender: false,
	})
	if delivered {
		s.presence.Emit(req.ReceiverID, EventReceiveNotification, MessageNotificationPayload{
			Type:       "message",
			SenderID:   senderID,
			SenderName: s.senderName(senderID),
			Message:    MessagePreview(req.Content),
			Timestamp:  time.Now(),
		})
	}
	log.Debug().
		Uint("sender_id", senderID).
		Uint("receiver_id", req.ReceiverID).
		Bool("delivered", delivered).
		Msg("message sent")

	return message, nil
}

// FetchConversation returns all messages between the two users in ascending
// creation order, and marks the other party's unread messages as read. Only
// the rows returned by this fetch are flipped, so a message persisted while
// the fetch is in flight keeps its unread state.
func (s *ChatService) FetchConversation(ctx context.Context, selfID, otherID uint) ([]models.Message, error) {
	messages, err := s.messageRepository.GetConversation(ctx, selfID, otherID)
	if err != nil {
		return nil, fmt.Errorf("fetch conversation: %w", err)
	}

	var unread []uint
	for _, m := range messages {
		if m.SenderID == otherID && m.ReceiverID == selfID && !m.IsRead {
			unread = append(unread, m.ID)
		}
	}
	if len(unread) == 0 {
		return messages, nil
	}

	now := time.Now()
	if err := s.messageRepository.MarkMessagesRead(ctx, unread, now); err != nil {
		return nil, fmt.Errorf("mark conversation read: %w", err)
	}
	for i := range messages {
		if messages[i].SenderID == otherID && messages[i].ReceiverID == selfID && !messages[i].IsRead {
			messages[i].IsRead = true
			messages[i].ReadAt = &now
		}
	}
	return messages, nil
}

// ChatPartners returns the users the given user has exchanged messages with,
// newest conversation first, each with the latest message between the pair.
func (s *ChatService) ChatPartners(ctx context.Context, userID uint) ([]models.ChatPartner, error) {
	messages, err := s.messageRepository.GetUserMessages(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user messages: %w", err)
	}

	partners := make([]models.ChatPartner, 0)
	seen := make(map[uint]bool)
	for _, m := range messages {
		otherID := m.SenderID
		if otherID == userID {
			otherID = m.ReceiverID
		}
		if seen[otherID] {
			continue
		}
		seen[otherID] = true

		user, err := s.userRepository.GetUserByID(otherID)
		if err != nil {
			log.Warn().Err(err).Uint("user_id", otherID).Msg("chat partner lookup")
			continue
		}
		partners = append(partners, models.ChatPartner{
			User: user.ToCompact(),
			LastMessage: &models.LastMessage{
				Content:   m.Content,
				Timestamp: m.CreatedAt,
				IsSender:  m.SenderID == userID,
			},
		})
	}
	return partners, nil
}

// UnreadCount returns the number of unread messages addressed to the user.
func (s *ChatService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.messageRepository.GetUnreadCount(ctx, userID)
}

// MessagePreview truncates long text to a bounded preview with an ellipsis
// marker. The persisted message keeps the full content.
func MessagePreview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLimit {
		return content
	}
	return string(runes[:previewLimit]) + "..."
}

func (s *ChatService) senderName(senderID uint) string {
	user, err := s.userRepository.GetUserByID(senderID)
	if err != nil {
		log.Warn().Err(err).Uint("user_id", senderID).Msg("sender lookup for notification")
		return ""
	}
	return user.Name
}
