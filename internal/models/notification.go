package models

import "time"

// Notification types generated by the fan-out workflows.
const (
	NotificationNewPost    = "new_post"
	NotificationNewComment = "new_comment"
	NotificationPostLike   = "post_like"
)

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	RecipientID  uint      `json:"user_id" gorm:"index:idx_notifications_recipient,priority:1"`
	Type         string    `json:"type" gorm:"size:30;index"` // new_post, new_comment, post_like
	Message      string    `json:"message"`                   // rendered text, actor name resolved at write time
	FromUserID   uint      `json:"from_user"`
	FromUserName string    `json:"from_user_name"`
	PostID       string    `json:"post_id" gorm:"index"`
	IsRead       bool      `json:"read" gorm:"default:false;index"`
	CreatedAt    time.Time `json:"created_at" gorm:"index:idx_notifications_recipient,priority:2"`
}
