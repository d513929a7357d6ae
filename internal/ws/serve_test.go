package ws

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shivanshahestabit-sudo/socialMedia-backend/internal/models"
)

type stubUserRepo struct {
	existing map[uint]bool
}

func (r *stubUserRepo) CreateUser(u *models.User) error { return nil }

func (r *stubUserRepo) GetUserByID(id uint) (*models.User, error) {
	if !r.existing[id] {
		return nil, errors.New("user not found")
	}
	return &models.User{ID: id, Name: "user"}, nil
}

func (r *stubUserRepo) GetUserByEmail(email string) (*models.User, error) {
	return nil, errors.New("user not found")
}

func (r *stubUserRepo) GetUsers() ([]models.User, error)              { return nil, nil }
func (r *stubUserRepo) GetUsersExcept(id uint) ([]models.User, error) { return nil, nil }

func (r *stubUserRepo) UserExists(id uint) (bool, error) { return r.existing[id], nil }

func (r *stubUserRepo) UpdateUser(u *models.User) error             { return nil }
func (r *stubUserRepo) DeleteUser(id uint) error                    { return nil }
func (r *stubUserRepo) SearchUsers(q string) ([]models.User, error) { return nil, nil }

func drainFrame(t *testing.T, c *Client) Frame {
	t.Helper()
	select {
	case raw := <-c.send:
		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			t.Fatalf("unmarshal frame: %v", err)
		}
		return frame
	default:
		t.Fatal("no frame enqueued")
		return Frame{}
	}
}

func mustRaw(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestHandleJoinUnknownUser(t *testing.T) {
	hub := NewHub()
	g := NewGateway(hub, nil, &stubUserRepo{existing: map[uint]bool{}})
	c := newTestClient(hub, "c1")

	g.handleJoin(c, mustRaw(t, JoinData{UserID: 7}))

	frame := drainFrame(t, c)
	if frame.Event != EventJoinError {
		t.Fatalf("event = %q, want %q", frame.Event, EventJoinError)
	}
	var errData ErrorData
	if err := json.Unmarshal(frame.Data, &errData); err != nil {
		t.Fatal(err)
	}
	if errData.Error != "unknown user" {
		t.Errorf("error = %q, want %q", errData.Error, "unknown user")
	}
	if _, ok := hub.Lookup(7); ok {
		t.Error("rejected join created a presence entry")
	}
}

func TestHandleJoinKnownUser(t *testing.T) {
	hub := NewHub()
	g := NewGateway(hub, nil, &stubUserRepo{existing: map[uint]bool{7: true}})
	c := newTestClient(hub, "c1")

	g.handleJoin(c, mustRaw(t, JoinData{UserID: 7}))

	if _, ok := hub.Lookup(7); !ok {
		t.Fatal("join did not create a presence entry")
	}

	frame := drainFrame(t, c)
	if frame.Event != EventJoined {
		t.Fatalf("first event = %q, want %q", frame.Event, EventJoined)
	}
	var joinedData JoinedData
	if err := json.Unmarshal(frame.Data, &joinedData); err != nil {
		t.Fatal(err)
	}
	if joinedData.UserID != 7 || len(joinedData.OnlineUsers) != 1 {
		t.Errorf("joined payload = %+v", joinedData)
	}

	// The join also broadcasts the updated online set to every connection.
	frame = drainFrame(t, c)
	if frame.Event != EventUsersOnline {
		t.Errorf("second event = %q, want %q", frame.Event, EventUsersOnline)
	}
}

func TestHandleSendMessageRequiresJoin(t *testing.T) {
	hub := NewHub()
	g := NewGateway(hub, nil, &stubUserRepo{})
	c := newTestClient(hub, "c1")

	g.handleSendMessage(c, mustRaw(t, models.SendMessageRequest{ReceiverID: 2, Content: "hi"}))

	frame := drainFrame(t, c)
	if frame.Event != EventMessageError {
		t.Errorf("event = %q, want %q", frame.Event, EventMessageError)
	}
}

func TestHandleTyping(t *testing.T) {
	hub := NewHub()
	g := NewGateway(hub, nil, &stubUserRepo{existing: map[uint]bool{7: true, 9: true}})

	sender := newTestClient(hub, "c1")
	receiver := newTestClient(hub, "c2")
	hub.Join(7, sender)
	hub.Join(9, receiver)

	g.handleTyping(sender, mustRaw(t, TypingData{ReceiverID: 9, IsTyping: true}))

	frame := drainFrame(t, receiver)
	if frame.Event != EventUserTyping {
		t.Fatalf("event = %q, want %q", frame.Event, EventUserTyping)
	}
	var typing UserTypingData
	if err := json.Unmarshal(frame.Data, &typing); err != nil {
		t.Fatal(err)
	}
	if typing.SenderID != 7 || !typing.IsTyping {
		t.Errorf("typing payload = %+v", typing)
	}
}

func TestHandleSendNotificationRelay(t *testing.T) {
	hub := NewHub()
	g := NewGateway(hub, nil, &stubUserRepo{existing: map[uint]bool{7: true, 9: true}})

	sender := newTestClient(hub, "c1")
	receiver := newTestClient(hub, "c2")
	hub.Join(7, sender)
	hub.Join(9, receiver)

	payload := json.RawMessage(`{"type":"custom","message":"hello"}`)
	g.handleSendNotification(sender, mustRaw(t, SendNotificationData{ReceiverID: 9, Notification: payload}))

	frame := drainFrame(t, receiver)
	if frame.Event != "receive-notification" {
		t.Fatalf("event = %q, want %q", frame.Event, "receive-notification")
	}
	// The payload passes through untouched.
	if string(frame.Data) != string(payload) {
		t.Errorf("relayed payload = %s, want %s", frame.Data, payload)
	}

	select {
	case <-sender.send:
		t.Error("relay echoed a frame back to the sender")
	default:
	}
}

func TestHandleSendNotificationFromUnjoinedDropped(t *testing.T) {
	hub := NewHub()
	g := NewGateway(hub, nil, &stubUserRepo{})

	sender := newTestClient(hub, "c1") // never joined
	receiver := newTestClient(hub, "c2")
	hub.Join(9, receiver)

	g.handleSendNotification(sender, mustRaw(t, SendNotificationData{
		ReceiverID:   9,
		Notification: json.RawMessage(`{"type":"custom"}`),
	}))

	select {
	case <-receiver.send:
		t.Error("notification from an un-joined connection was relayed")
	default:
	}
}

func TestHandleTypingFromUnjoinedDropped(t *testing.T) {
	hub := NewHub()
	g := NewGateway(hub, nil, &stubUserRepo{})

	sender := newTestClient(hub, "c1") // never joined
	receiver := newTestClient(hub, "c2")
	hub.Join(9, receiver)

	g.handleTyping(sender, mustRaw(t, TypingData{ReceiverID: 9, IsTyping: true}))

	select {
	case <-receiver.send:
		t.Error("typing from an un-joined connection was relayed")
	default:
	}
}
