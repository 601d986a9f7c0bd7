package store

import (
	"context"
	"strings"
	"time"

	"go_canteen/canteenapi/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrderStore holds order records. Menu membership is validated by callers
// before Place, since they already hold a menu snapshot.
type OrderStore struct {
	Collection *mongo.Collection
}

// Place inserts a new pending order for the given item.
func (s *OrderStore) Place(ctx context.Context, studentID, item string) (models.Order, error) {
	order := models.Order{
		StudentID: studentID,
		Item:      strings.ToLower(strings.TrimSpace(item)),
		Status:    models.OrderPending,
		CreatedAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	result, err := s.Collection.InsertOne(ctx, order)
	if err != nil {
		return models.Order{}, err
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		order.ID = id
	}
	return order, nil
}

// ListPending returns every order still waiting on staff.
func (s *OrderStore) ListPending(ctx context.Context) ([]models.Order, error) {
	return s.find(ctx, bson.M{"status": models.OrderPending}, nil)
}

// History returns a student's orders, newest first.
func (s *OrderStore) History(ctx context.Context, studentID string) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return s.find(ctx, bson.M{"studentId": studentID}, opts)
}

// ItemsOrdered returns the item names from a student's full order history,
// used to build the generative-text prompt.
func (s *OrderStore) ItemsOrdered(ctx context.Context, studentID string) ([]string, error) {
	orders, err := s.find(ctx, bson.M{"studentId": studentID}, nil)
	if err != nil {
		return nil, err
	}
	items := make([]string, 0, len(orders))
	for _, o := range orders {
		items = append(items, o.Item)
	}
	return items, nil
}

// MarkReady flips a pending order to ready and returns the updated record so
// the caller can notify the student.
func (s *OrderStore) MarkReady(ctx context.Context, orderID string) (models.Order, error) {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return models.Order{}, ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var order models.Order
	err = s.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return models.Order{}, ErrNotFound
	}
	if err != nil {
		return models.Order{}, err
	}

	_, err = s.Collection.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": models.OrderReady}})
	if err != nil {
		return models.Order{}, err
	}
	order.Status = models.OrderReady
	return order, nil
}

// MarkPaid records a successful payment against an order.
func (s *OrderStore) MarkPaid(ctx context.Context, orderID string) error {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	result, err := s.Collection.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"paid": true}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID fetches one order.
func (s *OrderStore) GetByID(ctx context.Context, orderID string) (models.Order, error) {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return models.Order{}, ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var order models.Order
	err = s.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return models.Order{}, ErrNotFound
	}
	if err != nil {
		return models.Order{}, err
	}
	return order, nil
}

// CancelLastPending deletes the most recent pending order matching the
// student and item. It reports whether anything was deleted.
func (s *OrderStore) CancelLastPending(ctx context.Context, studentID, item string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.FindOneAndDelete().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	err := s.Collection.FindOneAndDelete(ctx, bson.M{
		"studentId": studentID,
		"item":      strings.ToLower(strings.TrimSpace(item)),
		"status":    models.OrderPending,
	}, opts).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *OrderStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = s.Collection.Find(ctx, filter, opts)
	} else {
		cursor, err = s.Collection.Find(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	for cursor.Next(ctx) {
		var order models.Order
		if err := cursor.Decode(&order); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}
