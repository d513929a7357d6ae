package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/middleware"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/models"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/repositories"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/services"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository   repositories.CommentRepository
	postRepository      repositories.PostRepository // To update comment counts in posts
	notificationService *services.NotificationService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, notifService *services.NotificationService) *CommentHandler {
	return &CommentHandler{
		commentRepository:   commentRepo,
		postRepository:      postRepo,
		notificationService: notifService,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/comments", h.CreateComment)
	g.GET("/posts/:post_id/comments", h.GetCommentsByPostID)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// CreateComment creates a new comment on a post and notifies the post owner,
// unless the commenter owns the post.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	currentUserID := middleware.UserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("post_id")

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// Verify post exists
	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	comment := &models.Comment{
		PostID:  postID,
		UserID:  currentUserID,
		Content: req.Content,
	}

	if err := h.commentRepository.CreateComment(comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Increment comments count in the post
	go h.postRepository.IncrementCommentsCount(context.Background(), postID)

	if err := h.notificationService.NotifyNewComment(c.Request().Context(), currentUserID, post.UserID, postID); err != nil {
		log.Error().Err(err).Str("post_id", postID).Msg("comment notification")
	}

	return c.JSON(http.StatusCreated, comment)
}

// GetCommentsByPostID retrieves all comments for a specific post
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	postID := c.Param("post_id")

	// Verify post exists
	_, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	comments, err := h.commentRepository.GetCommentsByPostID(postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, comments)
}

// DeleteComment deletes an existing comment owned by the authenticated user
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	currentUserID := middleware.UserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	comment, err := h.commentRepository.GetCommentByID(uint(commentID))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}
	if comment.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only delete your own comments")
	}

	if err := h.commentRepository.DeleteComment(uint(commentID)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	go h.postRepository.DecrementCommentsCount(context.Background(), comment.PostID)

	return c.NoContent(http.StatusNoContent)
}
