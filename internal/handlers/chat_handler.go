package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/middleware"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/models"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/services"
)

// ChatHandler exposes the direct-message pipeline over REST: the conversation
// fetch with its read-state flip, and a request/response send path that goes
// through the same persistence-then-push pipeline as the websocket one.
type ChatHandler struct {
	chatService *services.ChatService
	presence    services.Presence
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chatService *services.ChatService, presence services.Presence) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		presence:    presence,
	}
}

// RegisterChatRoutes registers chat-related routes
func (h *ChatHandler) RegisterChatRoutes(g *echo.Group) {
	g.GET("/chat/users", h.GetChatPartners)
	g.GET("/chat/conversations/:user_id", h.GetConversation)
	g.POST("/chat/messages", h.SendMessage)
	g.GET("/chat/unread-count", h.GetUnreadCount)
	g.GET("/chat/online-users", h.GetOnlineUsers)
}

// GetChatPartners lists the users the authenticated user has chatted with,
// most recent conversation first.
func (h *ChatHandler) GetChatPartners(c echo.Context) error {
	currentUserID := middleware.UserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	partners, err := h.chatService.ChatPartners(c.Request().Context(), currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, partners)
}

// GetConversation returns the full conversation with another user in
// ascending order. Opening a conversation marks the other party's unread
// messages as read.
func (h *ChatHandler) GetConversation(c echo.Context) error {
	currentUserID := middleware.UserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	otherID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil || otherID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	messages, err := h.chatService.FetchConversation(c.Request().Context(), currentUserID, uint(otherID))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	out := make([]services.DeliveredMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, services.DeliveredMessage{Message: m, IsSender: m.SenderID == currentUserID})
	}
	return c.JSON(http.StatusOK, out)
}

// SendMessage sends a direct message over plain request/response. It reuses
// the websocket pipeline, so the receiver still gets the live push when
// online.
func (h *ChatHandler) SendMessage(c echo.Context) error {
	currentUserID := middleware.UserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	message, err := h.chatService.SendMessage(c.Request().Context(), currentUserID, req)
	if err != nil {
		if errors.Is(err, services.ErrReceiverRequired) || errors.Is(err, services.ErrEmptyMessage) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to send message")
	}

	return c.JSON(http.StatusCreated, services.DeliveredMessage{Message: *message, IsSender: true})
}

// GetUnreadCount returns the number of unread messages addressed to the
// authenticated user.
func (h *ChatHandler) GetUnreadCount(c echo.Context) error {
	currentUserID := middleware.UserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	count, err := h.chatService.UnreadCount(c.Request().Context(), currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"count": count})
}

// GetOnlineUsers returns a snapshot of the presence registry.
func (h *ChatHandler) GetOnlineUsers(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"online_users": h.presence.OnlineUsers()})
}
