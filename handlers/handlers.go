// Package handlers provides the HTTP surface of the canteen API: account
// signup/login, menu management, order placement and tracking, the chat
// endpoint and the per-student websocket push channel. Handlers are methods
// on DB, which holds the stores and collaborators wired in driver/main.go.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go_canteen/canteenapi/chat"
	"go_canteen/canteenapi/models"
	"go_canteen/canteenapi/notify"
	"go_canteen/canteenapi/store"

	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type DB struct {
	Users    *mongo.Collection
	Menu     *store.MenuStore
	Orders   *store.OrderStore
	ChatLog  *store.ChatLogStore
	Resolver *chat.Resolver
	Hub      *notify.Hub

	StripeKey string
}

// Define Prometheus metrics
var (
	signupRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signup_requests_total",
			Help: "Total number of signup requests",
		},
		[]string{"status"},
	)

	loginRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_requests_total",
			Help: "Total number of login requests by status",
		},
		[]string{"status"},
	)

	chatRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Total number of chat turns by status",
		},
		[]string{"status"},
	)

	chatDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_turn_duration_seconds",
			Help:    "Histogram of chat turn durations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	ordersPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Total number of orders placed through the explicit endpoint",
	})

	pushesDelivered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_ready_pushes_total",
		Help: "Total number of order-ready push attempts to connected students",
	})
)

func Init() {
	// Register metrics with Prometheus
	prometheus.MustRegister(signupRequests)
	prometheus.MustRegister(loginRequests)
	prometheus.MustRegister(chatRequests)
	prometheus.MustRegister(chatDuration)
	prometheus.MustRegister(ordersPlaced)
	prometheus.MustRegister(pushesDelivered)
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// isStaff reports whether the username belongs to a staff account. Staff-only
// menu mutations carry the acting username in the payload.
func (db *DB) isStaff(ctx context.Context, username string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := db.Users.FindOne(ctx, bson.M{
		"username": username,
		"role":     models.RoleStaff,
	}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (db *DB) HealthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{"alive": true})
}
