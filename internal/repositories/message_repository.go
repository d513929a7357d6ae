package repositories

import (
	"context"
	"time"

	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/models"
	"gorm.io/gorm"
)

// MessageRepository defines the interface for direct-message operations
type MessageRepository interface {
	CreateMessage(ctx context.Context, message *models.Message) error
	GetConversation(ctx context.Context, selfID, otherID uint) ([]models.Message, error)
	MarkMessagesRead(ctx context.Context, ids []uint, at time.Time) error
	GetUserMessages(ctx context.Context, userID uint) ([]models.Message, error)
	GetUnreadCount(ctx context.Context, userID uint) (int64, error)
}

// PostgresMessageRepository implements MessageRepository for PostgreSQL
type PostgresMessageRepository struct {
	db *gorm.DB
}

// NewPostgresMessageRepository creates a new PostgresMessageRepository
func NewPostgresMessageRepository(db *gorm.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

// CreateMessage persists a new message in PostgreSQL
func (r *PostgresMessageRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// GetConversation retrieves all messages between two users in ascending creation order
func (r *PostgresMessageRepository) GetConversation(ctx context.Context, selfID, otherID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			selfID, otherID, otherID, selfID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkMessagesRead flips is_read/read_at on the given message IDs. Callers
// pass only IDs they have already fetched, so a message inserted after the
// fetch is never affected.
func (r *PostgresMessageRepository) MarkMessagesRead(ctx context.Context, ids []uint, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("id IN ? AND is_read = false", ids).
		Updates(map[string]interface{}{"is_read": true, "read_at": at}).Error
}

// GetUserMessages retrieves every message the user sent or received, newest first
func (r *PostgresMessageRepository) GetUserMessages(ctx context.Context, userID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// GetUnreadCount returns the number of unread messages addressed to the user
func (r *PostgresMessageRepository) GetUnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("receiver_id = ? AND is_read = false", userID).
		Count(&count).Error
	return count, err
}
