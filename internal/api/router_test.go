package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/parlorchat/parlor/clients/go/parlor"
	"github.com/parlorchat/parlor/internal/chat"
	"github.com/parlorchat/parlor/internal/config"
	"github.com/parlorchat/parlor/internal/ws"
)

const waitTimeout = 2 * time.Second

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		Port:            "0",
		Env:             "test",
		ClientOrigin:    []string{"*"},
		DefaultRoom:     "general",
		PresetRooms:     []string{"general", "tech"},
		HistoryLimit:    200,
		MaxMessageSize:  1 << 20,
		RateLimitBurst:  100,
		RateLimitRefill: time.Second,
	}

	hub := ws.NewHub(zerolog.Nop())
	svc := chat.NewService(chat.Options{
		DefaultRoom:  cfg.DefaultRoom,
		PresetRooms:  cfg.PresetRooms,
		HistoryLimit: cfg.HistoryLimit,
	}, hub, zerolog.Nop())

	srv := httptest.NewServer(NewRouter(cfg, zerolog.Nop(), svc, hub))
	t.Cleanup(srv.Close)
	t.Cleanup(hub.CloseAll)
	return srv
}

func dialAndJoin(t *testing.T, serverURL, username, room string) (*parlor.Client, parlor.RoomSnapshot) {
	t.Helper()

	client, err := parlor.Dial(serverURL)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	if _, err := client.WaitFor(parlor.EventRoomList, waitTimeout); err != nil {
		t.Fatalf("%s: %v", username, err)
	}
	if err := client.Join(username, room); err != nil {
		t.Fatalf("%s join: %v", username, err)
	}
	event, err := client.WaitFor(parlor.EventRoomJoined, waitTimeout)
	if err != nil {
		t.Fatalf("%s room_joined: %v", username, err)
	}
	var snapshot parlor.RoomSnapshot
	if err := event.Decode(&snapshot); err != nil {
		t.Fatalf("%s snapshot: %v", username, err)
	}
	return client, snapshot
}

func connID(t *testing.T, snapshot parlor.RoomSnapshot, username string) string {
	t.Helper()
	for _, user := range snapshot.Users {
		if user.Username == username {
			return user.ID
		}
	}
	t.Fatalf("user %q not in snapshot %+v", username, snapshot.Users)
	return ""
}

func TestRelayEndToEnd(t *testing.T) {
	srv := newTestServer(t)

	alice, aliceSnap := dialAndJoin(t, srv.URL, "alice", "general")
	if aliceSnap.Room != "general" || len(aliceSnap.Users) != 1 {
		t.Fatalf("alice snapshot = %+v", aliceSnap)
	}

	bob, bobSnap := dialAndJoin(t, srv.URL, "bob", "general")
	bobID := connID(t, bobSnap, "bob")

	// alice sees bob arrive.
	if _, err := alice.WaitFor(parlor.EventUserJoined, waitTimeout); err != nil {
		t.Fatalf("alice user_joined: %v", err)
	}

	// Broadcast message reaches every room member, the sender included.
	if err := alice.SendMessage("hi bob", ""); err != nil {
		t.Fatalf("send: %v", err)
	}
	var delivered parlor.Message
	for name, client := range map[string]*parlor.Client{"alice": alice, "bob": bob} {
		event, err := client.WaitFor(parlor.EventReceiveMessage, waitTimeout)
		if err != nil {
			t.Fatalf("%s receive_message: %v", name, err)
		}
		if err := event.Decode(&delivered); err != nil {
			t.Fatalf("%s decode: %v", name, err)
		}
		if delivered.Sender != "alice" || delivered.Room != "general" || delivered.ID <= 0 {
			t.Fatalf("%s saw message %+v", name, delivered)
		}
	}

	// Read receipt fans out to the room and to the original sender.
	if err := bob.MarkRead(delivered.ID, "general"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	event, err := alice.WaitFor(parlor.EventMessageRead, waitTimeout)
	if err != nil {
		t.Fatalf("alice message_read: %v", err)
	}
	var receipt parlor.ReadReceipt
	if err := event.Decode(&receipt); err != nil {
		t.Fatalf("decode receipt: %v", err)
	}
	if receipt.MessageID != delivered.ID || receipt.ReaderID != bobID {
		t.Fatalf("receipt = %+v, want message %d read by %s", receipt, delivered.ID, bobID)
	}

	// Typing indicator.
	if err := bob.Typing(true); err != nil {
		t.Fatalf("typing: %v", err)
	}
	event, err = alice.WaitFor(parlor.EventTypingUsers, waitTimeout)
	if err != nil {
		t.Fatalf("alice typing_users: %v", err)
	}
	var typing struct {
		Room  string   `json:"room"`
		Users []string `json:"users"`
	}
	if err := event.Decode(&typing); err != nil {
		t.Fatalf("decode typing: %v", err)
	}
	if typing.Room != "general" || len(typing.Users) != 1 || typing.Users[0] != "bob" {
		t.Fatalf("typing_users = %+v", typing)
	}

	// Private message goes to recipient and sender only, and is never stored.
	if err := alice.SendPrivate(bobID, "psst"); err != nil {
		t.Fatalf("private: %v", err)
	}
	for name, client := range map[string]*parlor.Client{"alice": alice, "bob": bob} {
		event, err := client.WaitFor(parlor.EventPrivateMessage, waitTimeout)
		if err != nil {
			t.Fatalf("%s private_message: %v", name, err)
		}
		var pm parlor.Message
		if err := event.Decode(&pm); err != nil {
			t.Fatalf("%s decode: %v", name, err)
		}
		if !pm.IsPrivate || pm.Body != "psst" || pm.Sender != "alice" {
			t.Fatalf("%s saw private message %+v", name, pm)
		}
	}

	// The REST history excludes the private message.
	resp, err := http.Get(srv.URL + "/api/messages?room=general")
	if err != nil {
		t.Fatalf("history request: %v", err)
	}
	defer resp.Body.Close()
	var page struct {
		Room     string           `json:"room"`
		Messages []parlor.Message `json:"messages"`
		HasMore  bool             `json:"hasMore"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(page.Messages) != 1 || page.Messages[0].Body != "hi bob" {
		t.Fatalf("history = %+v", page.Messages)
	}
}

func TestRelayRoomSwitchAndDisconnect(t *testing.T) {
	srv := newTestServer(t)

	alice, _ := dialAndJoin(t, srv.URL, "alice", "general")
	bob, bobSnap := dialAndJoin(t, srv.URL, "bob", "general")
	bobID := connID(t, bobSnap, "bob")

	if err := bob.SwitchRoom("tech"); err != nil {
		t.Fatalf("switch: %v", err)
	}
	event, err := bob.WaitFor(parlor.EventRoomJoined, waitTimeout)
	if err != nil {
		t.Fatalf("bob room_joined: %v", err)
	}
	var snapshot parlor.RoomSnapshot
	if err := event.Decode(&snapshot); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snapshot.Room != "tech" || len(snapshot.Users) != 1 {
		t.Fatalf("tech snapshot = %+v", snapshot)
	}

	// alice sees bob leave general.
	event, err = alice.WaitFor(parlor.EventUserLeft, waitTimeout)
	if err != nil {
		t.Fatalf("alice user_left: %v", err)
	}
	var left parlor.User
	if err := event.Decode(&left); err != nil {
		t.Fatalf("decode user_left: %v", err)
	}
	if left.ID != bobID {
		t.Fatalf("user_left = %+v, want id %s", left, bobID)
	}

	// A message in tech must not reach general.
	if err := bob.SendMessage("tech only", ""); err != nil {
		t.Fatalf("send: %v", err)
	}
	if _, err := bob.WaitFor(parlor.EventReceiveMessage, waitTimeout); err != nil {
		t.Fatalf("bob receive_message: %v", err)
	}
	if event, err := alice.WaitFor(parlor.EventReceiveMessage, 300*time.Millisecond); err == nil {
		t.Fatalf("alice received a message from another room: %+v", event)
	}

	// Closing bob's socket announces the departure to his room. alice is in
	// general, so assert through the presence API instead.
	bob.Close()
	deadline := time.Now().Add(waitTimeout)
	for {
		resp, err := http.Get(srv.URL + "/api/users/" + bobID)
		if err != nil {
			t.Fatalf("presence lookup: %v", err)
		}
		code := resp.StatusCode
		resp.Body.Close()
		if code == http.StatusNotFound {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("bob still present after disconnect")
		}
		time.Sleep(20 * time.Millisecond)
	}
}
