package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
)

//ChatHandler handles one chat turn for a student

func (db *DB) ChatHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, span := otel.Tracer("chat-service").Start(r.Context(), "ChatHandler")
	defer span.End()

	var req struct {
		StudentID string `json:"studentId"`
		Message   string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Error decoding JSON: "+err.Error(), http.StatusBadRequest)
		chatRequests.WithLabelValues("error").Inc()
		chatDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return
	}
	if req.StudentID == "" || req.Message == "" {
		http.Error(w, "studentId and message are required", http.StatusBadRequest)
		chatRequests.WithLabelValues("error").Inc()
		chatDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return
	}

	reply, err := db.Resolver.Reply(ctx, req.StudentID, req.Message)
	if err != nil {
		span.RecordError(err)
		http.Error(w, "Failed to process message", http.StatusInternalServerError)
		chatRequests.WithLabelValues("error").Inc()
		chatDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return
	}

	chatRequests.WithLabelValues("success").Inc()
	chatDuration.WithLabelValues("success").Observe(time.Since(start).Seconds())
	respondJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler keeps one live push connection per student. The read loop exists
// only to detect disconnection; nothing the client sends is interpreted.
func (db *DB) WSHandler(w http.ResponseWriter, r *http.Request) {
	studentID := mux.Vars(r)["studentId"]
	if studentID == "" {
		http.Error(w, "studentId is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Warnf("websocket upgrade failed for %s: %v", studentID, err)
		return
	}

	db.Hub.Register(studentID, conn)
	defer func() {
		db.Hub.Deregister(studentID, conn)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
