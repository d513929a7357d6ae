package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/models"
)

type stubNotificationRepo struct {
	rows []models.Notification
}

func (r *stubNotificationRepo) CreateNotification(n *models.Notification) error {
	r.rows = append(r.rows, *n)
	return nil
}

func (r *stubNotificationRepo) CreateNotifications(notifications []models.Notification) error {
	r.rows = append(r.rows, notifications...)
	return nil
}

func (r *stubNotificationRepo) GetByRecipientID(recipientID uint, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	var out []models.Notification
	for i := len(r.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if r.rows[i].RecipientID == recipientID {
			out = append(out, r.rows[i])
		}
	}
	return out, nil
}

func (r *stubNotificationRepo) GetUnreadCount(recipientID uint) (int64, error) {
	var count int64
	for _, n := range r.rows {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *stubNotificationRepo) MarkAsRead(notificationID uint) error {
	for i := range r.rows {
		if r.rows[i].ID == notificationID {
			r.rows[i].IsRead = true
		}
	}
	return nil
}

func (r *stubNotificationRepo) MarkAllAsRead(recipientID uint) error {
	for i := range r.rows {
		if r.rows[i].RecipientID == recipientID {
			r.rows[i].IsRead = true
		}
	}
	return nil
}

func (r *stubNotificationRepo) DeleteByPostID(postID string) error { return nil }

func TestGetNotifications(t *testing.T) {
	repo := &stubNotificationRepo{}
	for i := 1; i <= 60; i++ {
		repo.rows = append(repo.rows, models.Notification{
			ID:          uint(i),
			RecipientID: 5,
			Type:        models.NotificationNewPost,
			Message:     "Alice created a new post",
		})
	}
	h := NewNotificationHandler(repo)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("user_id")
	c.SetParamValues("5")

	if err := h.GetNotifications(c); err != nil {
		t.Fatalf("GetNotifications: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var got []models.Notification
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(got) != 50 {
		t.Errorf("got %d notifications, want the 50-row bound", len(got))
	}
	if got[0].ID != 60 {
		t.Errorf("first notification ID = %d, want newest (60)", got[0].ID)
	}
}

func TestGetNotificationsInvalidUserID(t *testing.T) {
	h := NewNotificationHandler(&stubNotificationRepo{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("user_id")
	c.SetParamValues("abc")

	err := h.GetNotifications(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("err = %v, want 400", err)
	}
}

func TestMarkAsReadIdempotent(t *testing.T) {
	repo := &stubNotificationRepo{rows: []models.Notification{
		{ID: 1, RecipientID: 5},
	}}
	h := NewNotificationHandler(repo)
	e := echo.New()

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPatch, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("1")

		if err := h.MarkAsRead(c); err != nil {
			t.Fatalf("MarkAsRead call %d: %v", i+1, err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("call %d status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}
	if !repo.rows[0].IsRead {
		t.Error("notification not marked read")
	}
}

func TestMarkAllAsRead(t *testing.T) {
	repo := &stubNotificationRepo{rows: []models.Notification{
		{ID: 1, RecipientID: 5},
		{ID: 2, RecipientID: 5},
		{ID: 3, RecipientID: 9},
	}}
	h := NewNotificationHandler(repo)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("user_id")
	c.SetParamValues("5")

	if err := h.MarkAllAsRead(c); err != nil {
		t.Fatalf("MarkAllAsRead: %v", err)
	}

	count, _ := repo.GetUnreadCount(5)
	if count != 0 {
		t.Errorf("user 5 unread count = %d, want 0", count)
	}
	count, _ = repo.GetUnreadCount(9)
	if count != 1 {
		t.Errorf("user 9 unread count = %d, want 1 (untouched)", count)
	}
}
