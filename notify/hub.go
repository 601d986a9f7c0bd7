// Package notify pushes order-ready messages to students over their open
// websocket connection. One connection per student, no queuing: if the
// student is offline the message is dropped.
package notify

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type Hub struct {
	mu    sync.Mutex
	conns map[string]*websocket.Conn
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]*websocket.Conn)}
}

// Register attaches a student's live connection, replacing any previous one.
func (h *Hub) Register(studentID string, conn *websocket.Conn) {
	h.mu.Lock()
	old := h.conns[studentID]
	h.conns[studentID] = conn
	h.mu.Unlock()

	if old != nil && old != conn {
		old.Close()
	}
}

// Deregister drops the student's connection if it is still the current one.
func (h *Hub) Deregister(studentID string, conn *websocket.Conn) {
	h.mu.Lock()
	if h.conns[studentID] == conn {
		delete(h.conns, studentID)
	}
	h.mu.Unlock()
}

// Push writes a text message to the student's connection. A missing or dead
// connection is not an error.
func (h *Hub) Push(studentID, text string) {
	h.mu.Lock()
	conn := h.conns[studentID]
	h.mu.Unlock()

	if conn == nil {
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		logrus.Warnf("push to %s failed: %v", studentID, err)
		h.Deregister(studentID, conn)
		conn.Close()
	}
}

// Connected reports whether the student currently has a live connection.
func (h *Hub) Connected(studentID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conns[studentID] != nil
}
