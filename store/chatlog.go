package store

import (
	"context"
	"time"

	"go_canteen/canteenapi/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ChatLogStore is an append-only audit trail of chat turns. Nothing in the
// system reads it back.
type ChatLogStore struct {
	Collection *mongo.Collection
}

func (s *ChatLogStore) Append(ctx context.Context, studentID, userMsg, reply string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := s.Collection.InsertOne(ctx, models.ChatLogEntry{
		StudentID: studentID,
		User:      userMsg,
		Bot:       reply,
		CreatedAt: time.Now(),
	})
	return err
}
