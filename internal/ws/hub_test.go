package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newRequestWithOrigin(origin string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	if origin != "" {
		r.Header.Set("Origin", origin)
	}
	return r
}

// testClient builds a Client with just enough state for hub delivery tests.
func testClient(id string, buffer int) *Client {
	return &Client{
		id:   id,
		send: make(chan []byte, buffer),
		addr: "test",
		log:  zerolog.Nop(),
	}
}

func TestHubDeliversToConnection(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	c := testClient("conn-1", 4)
	hub.Register(c)

	hub.ToConnection("conn-1", "typing_users", map[string]string{"room": "general"})

	select {
	case frame := <-c.send:
		var env Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			t.Fatalf("frame is not an envelope: %v", err)
		}
		if env.Event != "typing_users" {
			t.Fatalf("event = %q, want typing_users", env.Event)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no frame delivered")
	}
}

func TestHubUnknownConnectionIsNoop(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	// Must not panic or block.
	hub.ToConnection("ghost", "user_list", nil)
	hub.ToConnections([]string{"ghost"}, "user_list", nil)
}

func TestHubMulticastSkipsUnregistered(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	a := testClient("conn-a", 4)
	b := testClient("conn-b", 4)
	hub.Register(a)
	hub.Register(b)
	hub.Unregister("conn-b")

	hub.ToConnections([]string{"conn-a", "conn-b"}, "user_list", nil)

	if len(a.send) != 1 {
		t.Fatalf("conn-a received %d frames, want 1", len(a.send))
	}
	// conn-b's channel is closed; delivery must have been skipped, not sent.
	if _, open := <-b.send; open {
		t.Fatal("unregistered client received a frame")
	}
}

func TestHubDropsOnFullBuffer(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	c := testClient("conn-1", 1)
	hub.Register(c)

	done := make(chan struct{})
	go func() {
		hub.ToConnection("conn-1", "receive_message", "one")
		hub.ToConnection("conn-1", "receive_message", "two") // buffer full, dropped
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("delivery to a full buffer blocked")
	}
	if len(c.send) != 1 {
		t.Fatalf("buffered frames = %d, want 1", len(c.send))
	}
}

func TestHubUnregisterIdempotent(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	c := testClient("conn-1", 1)
	hub.Register(c)

	hub.Unregister("conn-1")
	hub.Unregister("conn-1") // second call must not close the channel again

	if hub.Count() != 0 {
		t.Fatalf("count = %d, want 0", hub.Count())
	}
}

func TestRateLimiterRefills(t *testing.T) {
	rl := newRateLimiter(2, 20*time.Millisecond)

	if !rl.allow() || !rl.allow() {
		t.Fatal("burst capacity not available")
	}
	if rl.allow() {
		t.Fatal("limiter allowed beyond burst")
	}

	time.Sleep(30 * time.Millisecond)
	if !rl.allow() {
		t.Fatal("limiter did not refill after the interval")
	}
}
