package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/models"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/repositories"
)

// NotificationService fans out notifications generated by post, like and
// comment workflows. Every eligible recipient gets a durable row first;
// recipients currently present in the registry additionally get a live push.
// Pushes are independent per recipient, so one unreachable recipient never
// blocks the rest.
type NotificationService struct {
	notificationRepository repositories.NotificationRepository
	userRepository         repositories.UserRepository
	presence               Presence
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository, presence Presence) *NotificationService {
	return &NotificationService{
		notificationRepository: notifRepo,
		userRepository:         userRepo,
		presence:               presence,
	}
}

// NotifyNewPost records one notification per user other than the actor, then
// pushes to every recipient that is currently online.
func (s *NotificationService) NotifyNewPost(ctx context.Context, actorID uint, postID string) error {
	actor, err := s.userRepository.GetUserByID(actorID)
	if err != nil {
		return fmt.Errorf("resolve actor: %w", err)
	}
	recipients, err := s.userRepository.GetUsersExcept(actorID)
	if err != nil {
		return fmt.Errorf("list recipients: %w", err)
	}
	if len(recipients) == 0 {
		return nil
	}

	message := actor.Name + " created a new post"
	notifications := make([]models.Notification, len(recipients))
	for i, r := range recipients {
		notifications[i] = models.Notification{
			RecipientID:  r.ID,
			Type:         models.NotificationNewPost,
			Message:      message,
			FromUserID:   actorID,
			FromUserName: actor.Name,
			PostID:       postID,
		}
	}
	if err := s.notificationRepository.CreateNotifications(notifications); err != nil {
		return fmt.Errorf("save notifications: %w", err)
	}

	for _, n := range notifications {
		s.push(n)
	}
	return nil
}

// NotifyPostLiked records and pushes a notification to the post owner.
// A self-like produces nothing.
func (s *NotificationService) NotifyPostLiked(ctx context.Context, actorID, ownerID uint, postID string) error {
	return s.notifyOwner(actorID, ownerID, postID, models.NotificationPostLike, " liked your post")
}

// NotifyNewComment records and pushes a notification to the post owner.
// A comment on one's own post produces nothing.
func (s *NotificationService) NotifyNewComment(ctx context.Context, actorID, ownerID uint, postID string) error {
	return s.notifyOwner(actorID, ownerID, postID, models.NotificationNewComment, " commented on your post")
}

func (s *NotificationService) notifyOwner(actorID, ownerID uint, postID, notifType, suffix string) error {
	if actorID == ownerID {
		return nil
	}
	actor, err := s.userRepository.GetUserByID(actorID)
	if err != nil {
		return fmt.Errorf("resolve actor: %w", err)
	}

	notification := &models.Notification{
		RecipientID:  ownerID,
		Type:         notifType,
		Message:      actor.Name + suffix,
		FromUserID:   actorID,
		FromUserName: actor.Name,
		PostID:       postID,
	}
	if err := s.notificationRepository.CreateNotification(notification); err != nil {
		return fmt.Errorf("save notification: %w", err)
	}

	s.push(*notification)
	return nil
}

// push attempts the live delivery for one recipient. Absence is silent; the
// durable row is the recovery path.
func (s *NotificationService) push(n models.Notification) {
	delivered := s.presence.Emit(n.RecipientID, EventNewNotification, NotificationPayload{
		Type:         n.Type,
		Message:      n.Message,
		PostID:       n.PostID,
		FromUserID:   n.FromUserID,
		FromUserName: n.FromUserName,
		CreatedAt:    n.CreatedAt,
	})
	if delivered {
		log.Debug().Uint("recipient_id", n.RecipientID).Str("type", n.Type).Msg("notification pushed")
	}
}
