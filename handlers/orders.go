package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go_canteen/canteenapi/models"
	"go_canteen/canteenapi/store"

	"github.com/gorilla/mux"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/charge"
)

func (db *DB) PlaceOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentID string `json:"studentId"`
		Item      string `json:"item"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Error decoding JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.StudentID == "" || req.Item == "" {
		http.Error(w, "studentId and item are required", http.StatusBadRequest)
		return
	}

	menu, err := db.Menu.Get(r.Context())
	if err != nil {
		http.Error(w, "Failed to fetch menu", http.StatusInternalServerError)
		return
	}

	item := strings.ToLower(strings.TrimSpace(req.Item))
	if !menu.Has(item) {
		http.Error(w, "Item not in menu", http.StatusBadRequest)
		return
	}

	if _, err := db.Orders.Place(r.Context(), req.StudentID, item); err != nil {
		http.Error(w, "Failed to place order", http.StatusInternalServerError)
		return
	}
	ordersPlaced.Inc()

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("✅ Order for %s placed successfully!", models.Capitalize(item)),
	})
}

func (db *DB) PendingOrdersHandler(w http.ResponseWriter, r *http.Request) {
	orders, err := db.Orders.ListPending(r.Context())
	if err != nil {
		http.Error(w, "Failed to fetch pending orders", http.StatusInternalServerError)
		return
	}

	views := make([]models.OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, o.View())
	}
	respondJSON(w, http.StatusOK, views)
}

func (db *DB) OrderHistoryHandler(w http.ResponseWriter, r *http.Request) {
	studentID := mux.Vars(r)["studentId"]

	orders, err := db.Orders.History(r.Context(), studentID)
	if err != nil {
		http.Error(w, "Failed to fetch order history", http.StatusInternalServerError)
		return
	}

	views := make([]models.OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, o.View())
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"orders": views})
}

// MarkReadyHandler flips an order to ready and pushes a notification to the
// student if their websocket is open. An offline student is not an error.
func (db *DB) MarkReadyHandler(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["orderId"]

	order, err := db.Orders.MarkReady(r.Context(), orderID)
	if err == store.ErrNotFound {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to update order", http.StatusInternalServerError)
		return
	}

	if db.Hub.Connected(order.StudentID) {
		db.Hub.Push(order.StudentID,
			fmt.Sprintf("🍽️ Your order for %s is ready!", models.Capitalize(order.Item)))
		pushesDelivered.Inc()
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Order %s marked ready.", orderID),
	})
}

type PaymentRequest struct {
	OrderID     string `json:"order_id"`
	Currency    string `json:"currency"`
	SourceToken string `json:"source_token"`
}

type PaymentResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// PayOrderHandler charges the item price for an order through Stripe and
// records the payment on the order.
func (db *DB) PayOrderHandler(w http.ResponseWriter, r *http.Request) {
	var paymentReq PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&paymentReq); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	order, err := db.Orders.GetByID(r.Context(), paymentReq.OrderID)
	if err == store.ErrNotFound {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to fetch order", http.StatusInternalServerError)
		return
	}

	menu, err := db.Menu.Get(r.Context())
	if err != nil {
		http.Error(w, "Failed to fetch menu", http.StatusInternalServerError)
		return
	}
	price, ok := menu.Price(order.Item)
	if !ok {
		http.Error(w, "Ordered item no longer priced on the menu", http.StatusBadRequest)
		return
	}

	stripe.Key = db.StripeKey

	chargeParams := &stripe.ChargeParams{
		Amount:   stripe.Int64(int64(price) * 100), // paise
		Currency: stripe.String(paymentReq.Currency),
		Source:   &stripe.SourceParams{Token: stripe.String(paymentReq.SourceToken)},
	}
	chargeParams.AddMetadata("order_id", paymentReq.OrderID)

	if _, err := charge.New(chargeParams); err != nil {
		http.Error(w, "Failed to process payment", http.StatusInternalServerError)
		return
	}

	if err := db.Orders.MarkPaid(r.Context(), paymentReq.OrderID); err != nil {
		http.Error(w, "Failed to update order status", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, PaymentResponse{
		Status:  "success",
		Message: "Payment processed successfully",
	})
}
