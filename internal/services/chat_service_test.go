package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/models"
)

type fakeMessageRepo struct {
	messages  []models.Message
	nextID    uint
	createErr error
	markErr   error
}

func (r *fakeMessageRepo) CreateMessage(ctx context.Context, m *models.Message) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	m.ID = r.nextID
	m.CreatedAt = time.Now()
	r.messages = append(r.messages, *m)
	return nil
}

func (r *fakeMessageRepo) GetConversation(ctx context.Context, selfID, otherID uint) ([]models.Message, error) {
	var out []models.Message
	for _, m := range r.messages {
		if (m.SenderID == selfID && m.ReceiverID == otherID) || (m.SenderID == otherID && m.ReceiverID == selfID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) MarkMessagesRead(ctx context.Context, ids []uint, at time.Time) error {
	if r.markErr != nil {
		return r.markErr
	}
	marked := make(map[uint]bool, len(ids))
	for _, id := range ids {
		marked[id] = true
	}
	for i := range r.messages {
		if marked[r.messages[i].ID] && !r.messages[i].IsRead {
			r.messages[i].IsRead = true
			t := at
			r.messages[i].ReadAt = &t
		}
	}
	return nil
}

func (r *fakeMessageRepo) GetUserMessages(ctx context.Context, userID uint) ([]models.Message, error) {
	var out []models.Message
	for i := len(r.messages) - 1; i >= 0; i-- {
		m := r.messages[i]
		if m.SenderID == userID || m.ReceiverID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) GetUnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	for _, m := range r.messages {
		if m.ReceiverID == userID && !m.IsRead {
			count++
		}
	}
	return count, nil
}

type fakeUserRepo struct {
	users map[uint]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uint]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) CreateUser(u *models.User) error { r.users[u.ID] = u; return nil }

func (r *fakeUserRepo) GetUserByID(id uint) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d not found", id)
	}
	return u, nil
}

func (r *fakeUserRepo) GetUserByEmail(email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errors.New("user not found")
}

func (r *fakeUserRepo) GetUsers() ([]models.User, error) {
	var out []models.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) GetUsersExcept(id uint) ([]models.User, error) {
	var out []models.User
	for _, u := range r.users {
		if u.ID != id {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UserExists(id uint) (bool, error) {
	_, ok := r.users[id]
	return ok, nil
}

func (r *fakeUserRepo) UpdateUser(u *models.User) error { r.users[u.ID] = u; return nil }
func (r *fakeUserRepo) DeleteUser(id uint) error        { delete(r.users, id); return nil }

func (r *fakeUserRepo) SearchUsers(query string) ([]models.User, error) {
	var out []models.User
	for _, u := range r.users {
		if strings.Contains(strings.ToLower(u.Name), strings.ToLower(query)) {
			out = append(out, *u)
		}
	}
	return out, nil
}

type emitted struct {
	userID uint
	event  string
	data   interface{}
}

type fakePresence struct {
	online map[uint]bool
	emits  []emitted
}

func newFakePresence(online ...uint) *fakePresence {
	p := &fakePresence{online: make(map[uint]bool)}
	for _, id := range online {
		p.online[id] = true
	}
	return p
}

func (p *fakePresence) Emit(userID uint, event string, data interface{}) bool {
	if !p.online[userID] {
		return false
	}
	p.emits = append(p.emits, emitted{userID: userID, event: event, data: data})
	return true
}

func (p *fakePresence) OnlineUsers() []uint {
	ids := make([]uint, 0, len(p.online))
	for id := range p.online {
		ids = append(ids, id)
	}
	return ids
}

func (p *fakePresence) eventsFor(userID uint) []string {
	var events []string
	for _, e := range p.emits {
		if e.userID == userID {
			events = append(events, e.event)
		}
	}
	return events
}

func TestSendMessageValidation(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc := NewChatService(repo, newFakeUserRepo(), newFakePresence())

	_, err := svc.SendMessage(context.Background(), 1, models.SendMessageRequest{Content: "hi"})
	if !errors.Is(err, ErrReceiverRequired) {
		t.Errorf("missing receiver: err = %v, want ErrReceiverRequired", err)
	}

	_, err = svc.SendMessage(context.Background(), 1, models.SendMessageRequest{ReceiverID: 2})
	if !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("empty message: err = %v, want ErrEmptyMessage", err)
	}

	if len(repo.messages) != 0 {
		t.Errorf("rejected messages were persisted: %d rows", len(repo.messages))
	}
}

func TestSendMessageDerivesType(t *testing.T) {
	tests := []struct {
		name    string
		content string
		image   string
		want    string
	}{
		{"text only", "hello", "", models.MessageTypeText},
		{"image only", "", "pic.png", models.MessageTypeImage},
		{"both", "look", "pic.png", models.MessageTypeMixed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeMessageRepo{}
			svc := NewChatService(repo, newFakeUserRepo(), newFakePresence())
			msg, err := svc.SendMessage(context.Background(), 1, models.SendMessageRequest{
				ReceiverID: 2,
				Content:    tt.content,
				Image:      tt.image,
			})
			if err != nil {
				t.Fatalf("SendMessage: %v", err)
			}
			if msg.MessageType != tt.want {
				t.Errorf("message type = %q, want %q", msg.MessageType, tt.want)
			}
		})
	}
}

func TestSendMessageOfflineReceiver(t *testing.T) {
	repo := &fakeMessageRepo{}
	presence := newFakePresence() // nobody online
	svc := NewChatService(repo, newFakeUserRepo(), presence)

	msg, err := svc.SendMessage(context.Background(), 1, models.SendMessageRequest{ReceiverID: 2, Content: "hi"})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if msg.ID == 0 {
		t.Error("message was not persisted")
	}
	if len(presence.emits) != 0 {
		t.Errorf("offline receiver got %d pushes, want 0", len(presence.emits))
	}
}

func TestSendMessageOnlineReceiver(t *testing.T) {
	repo := &fakeMessageRepo{}
	presence := newFakePresence(2)
	sender := &models.User{ID: 1, Name: "Alice"}
	svc := NewChatService(repo, newFakeUserRepo(sender), presence)

	content := strings.Repeat("x", 80)
	if _, err := svc.SendMessage(context.Background(), 1, models.SendMessageRequest{ReceiverID: 2, Content: content}); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	want := []string{EventReceiveMessage, EventReceiveNotification}
	if diff := cmp.Diff(want, presence.eventsFor(2)); diff != "" {
		t.Fatalf("pushed events mismatch (-want +got):\n%s", diff)
	}

	notif, ok := presence.emits[1].data.(MessageNotificationPayload)
	if !ok {
		t.Fatalf("notification payload has type %T", presence.emits[1].data)
	}
	if notif.SenderName != "Alice" {
		t.Errorf("notification sender = %q, want %q", notif.SenderName, "Alice")
	}
	if want := strings.Repeat("x", 50) + "..."; notif.Message != want {
		t.Errorf("notification preview = %q, want %q", notif.Message, want)
	}

	// The persisted row keeps the full content.
	if repo.messages[0].Content != content {
		t.Error("persisted message lost its full content")
	}
}

func TestSendMessagePersistFailure(t *testing.T) {
	repo := &fakeMessageRepo{createErr: errors.New("db down")}
	presence := newFakePresence(2)
	svc := NewChatService(repo, newFakeUserRepo(), presence)

	_, err := svc.SendMessage(context.Background(), 1, models.SendMessageRequest{ReceiverID: 2, Content: "hi"})
	if err == nil {
		t.Fatal("expected persistence error")
	}
	if len(presence.emits) != 0 {
		t.Error("push attempted after failed persistence")
	}
}

func TestMessagePreview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"short untouched", "hello", "hello"},
		{"exactly at limit", strings.Repeat("a", 50), strings.Repeat("a", 50)},
		{"truncated", strings.Repeat("a", 51), strings.Repeat("a", 50) + "..."},
		{"multibyte runes", strings.Repeat("é", 60), strings.Repeat("é", 50) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MessagePreview(tt.content); got != tt.want {
				t.Errorf("MessagePreview() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFetchConversationMarksOnlyInboundRead(t *testing.T) {
	repo := &fakeMessageRepo{}
	svc := NewChatService(repo, newFakeUserRepo(), newFakePresence())
	ctx := context.Background()

	// 2 -> 1 unread, 1 -> 2 unread.
	if _, err := svc.SendMessage(ctx, 2, models.SendMessageRequest{ReceiverID: 1, Content: "from other"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SendMessage(ctx, 1, models.SendMessageRequest{ReceiverID: 2, Content: "from self"}); err != nil {
		t.Fatal(err)
	}

	messages, err := svc.FetchConversation(ctx, 1, 2)
	if err != nil {
		t.Fatalf("FetchConversation: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(messages))
	}

	for _, m := range messages {
		inbound := m.SenderID == 2
		if inbound && (!m.IsRead || m.ReadAt == nil) {
			t.Error("inbound message not marked read in the returned rows")
		}
		if !inbound && m.IsRead {
			t.Error("own outbound message flipped to read")
		}
	}

	// The flip is durable, not just cosmetic.
	count, err := svc.UnreadCount(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("unread count after fetch = %d, want 0", count)
	}
	count, err = svc.UnreadCount(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("other side's unread count = %d, want 1", count)
	}
}

func TestChatPartnersDeduplicates(t *testing.T) {
	repo := &fakeMessageRepo{}
	users := newFakeUserRepo(
		&models.User{ID: 1, Name: "Alice"},
		&models.User{ID: 2, Name: "Bob"},
		&models.User{ID: 3, Name: "Carol"},
	)
	svc := NewChatService(repo, users, newFakePresence())
	ctx := context.Background()

	for _, req := range []models.SendMessageRequest{
		{ReceiverID: 2, Content: "first to bob"},
		{ReceiverID: 3, Content: "to carol"},
		{ReceiverID: 2, Content: "latest to bob"},
	} {
		if _, err := svc.SendMessage(ctx, 1, req); err != nil {
			t.Fatal(err)
		}
	}

	partners, err := svc.ChatPartners(ctx, 1)
	if err != nil {
		t.Fatalf("ChatPartners: %v", err)
	}
	if len(partners) != 2 {
		t.Fatalf("got %d partners, want 2", len(partners))
	}
	if partners[0].User.ID != 2 || partners[0].LastMessage.Content != "latest to bob" {
		t.Errorf("first partner = %+v, want Bob with the newest message", partners[0])
	}
	if partners[1].User.ID != 3 {
		t.Errorf("second partner = %+v, want Carol", partners[1])
	}
	if !partners[0].LastMessage.IsSender {
		t.Error("last message to Bob was sent by the user, IsSender should be true")
	}
}
