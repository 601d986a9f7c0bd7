package notify

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

// dial connects a test client through an httptest server that registers the
// server side of the socket with the hub.
func dial(t *testing.T, hub *Hub, studentID string) (*websocket.Conn, func()) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		hub.Register(studentID, conn)
	}))

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial: %v", err)
	}
	return client, func() {
		client.Close()
		srv.Close()
	}
}

func TestPushDeliversToConnectedStudent(t *testing.T) {
	hub := NewHub()
	client, cleanup := dial(t, hub, "student1")
	defer cleanup()

	// Register runs in the server handler; wait for it.
	deadline := time.Now().Add(2 * time.Second)
	for !hub.Connected("student1") {
		if time.Now().After(deadline) {
			t.Fatal("connection never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Push("student1", "🍽️ Your order for Dosa is ready!")

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(msg), "Dosa") {
		t.Fatalf("message = %q; want the item name", msg)
	}
}

func TestPushToAbsentStudentIsSilent(t *testing.T) {
	hub := NewHub()
	// must not panic or error
	hub.Push("ghost", "anything")
	if hub.Connected("ghost") {
		t.Fatal("ghost should not be connected")
	}
}

func TestDeregisterOnlyRemovesCurrentConn(t *testing.T) {
	hub := NewHub()
	_, cleanup := dial(t, hub, "student1")
	defer cleanup()

	deadline := time.Now().Add(2 * time.Second)
	for !hub.Connected("student1") {
		if time.Now().After(deadline) {
			t.Fatal("connection never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// a stale conn pointer must not evict the live one
	hub.Deregister("student1", nil)
	if !hub.Connected("student1") {
		t.Fatal("live connection was dropped by a stale deregister")
	}
}
