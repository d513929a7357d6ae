package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/middleware"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/models"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/repositories"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/services"
	"go.mongodb.org/mongo-driver/mongo"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository         repositories.PostRepository
	notificationRepository repositories.NotificationRepository
	notificationService    *services.NotificationService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, notifRepo repositories.NotificationRepository, notifService *services.NotificationService) *PostHandler {
	return &PostHandler{
		postRepository:         postRepo,
		notificationRepository: notifRepo,
		notificationService:    notifService,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.GET("/posts", h.GetPosts) // Get all posts or posts by user (with query param)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
}

// CreatePost creates a new post and fans out a notification to every other
// user. The post and the notification rows are durable before any live push
// is attempted.
func (h *PostHandler) CreatePost(c echo.Context) error {
	currentUserID := middleware.UserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post := &models.Post{
		UserID:    currentUserID,
		Content:   req.Content,
		ImageURLs: req.ImageURLs,
	}

	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.notificationService.NotifyNewPost(c.Request().Context(), currentUserID, post.ID.Hex()); err != nil {
		// The post is durable; a failed fan-out must not fail its creation.
		log.Error().Err(err).Str("post_id", post.ID.Hex()).Msg("new post fan-out")
	}

	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		if err.Error() == "post not found" || err == mongo.ErrNoDocuments {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, post)
}

// GetPosts retrieves multiple posts
func (h *PostHandler) GetPosts(c echo.Context) error {
	userID, _ := strconv.ParseUint(c.QueryParam("user_id"), 10, 32)
	skip, _ := strconv.ParseInt(c.QueryParam("skip"), 10, 64)
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if limit == 0 {
		limit = 10 // Default limit
	}

	var posts []models.Post
	var err error

	if userID != 0 {
		posts, err = h.postRepository.GetPostsByUserID(c.Request().Context(), uint(userID), skip, limit)
	} else {
		posts, err = h.postRepository.GetAllPosts(c.Request().Context(), skip, limit)
	}

	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, posts)
}

// UpdatePost updates an existing post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	currentUserID := middleware.UserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("id")

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	if post.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only edit your own posts")
	}

	if req.Content != "" {
		post.Content = req.Content
	}
	if req.ImageURLs != nil {
		post.ImageURLs = req.ImageURLs
	}

	if err := h.postRepository.UpdatePost(c.Request().Context(), postID, post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, post)
}

// DeletePost deletes a post and every notification that pointed at it
func (h *PostHandler) DeletePost(c echo.Context) error {
	currentUserID := middleware.UserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	if post.UserID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "You can only delete your own posts")
	}

	if err := h.postRepository.DeletePost(c.Request().Context(), postID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.notificationRepository.DeleteByPostID(postID); err != nil {
		log.Error().Err(err).Str("post_id", postID).Msg("delete post notifications")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Post deleted successfully"})
}
