package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderPending = "pending"
	OrderReady   = "ready"
)

type Order struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	StudentID string             `json:"studentId" bson:"studentId"`
	Item      string             `json:"item" bson:"item"`
	Status    string             `json:"status" bson:"status"`
	Paid      bool               `json:"paid" bson:"paid"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// OrderView is the history representation with the timestamp formatted to
// minute precision.
type OrderView struct {
	ID        string `json:"id"`
	StudentID string `json:"studentId"`
	Item      string `json:"item"`
	Status    string `json:"status"`
	Paid      bool   `json:"paid"`
	CreatedAt string `json:"createdAt"`
}

func (o Order) View() OrderView {
	return OrderView{
		ID:        o.ID.Hex(),
		StudentID: o.StudentID,
		Item:      o.Item,
		Status:    o.Status,
		Paid:      o.Paid,
		CreatedAt: o.CreatedAt.Format("2006-01-02 15:04"),
	}
}

type ChatLogEntry struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	StudentID string             `json:"studentId" bson:"studentId"`
	User      string             `json:"user" bson:"user"`
	Bot       string             `json:"bot" bson:"bot"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}
