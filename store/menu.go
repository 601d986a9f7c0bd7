package store

import (
	"context"
	"strings"
	"time"

	"go_canteen/canteenapi/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const opTimeout = 5 * time.Second

// DefaultMenu is inserted on first read when no menu document exists.
func DefaultMenu() []models.MenuEntry {
	return []models.MenuEntry{
		{Name: "idly", Price: 20},
		{Name: "dosa", Price: 30},
		{Name: "poori", Price: 35},
		{Name: "fried rice", Price: 70},
		{Name: "noodles", Price: 65},
		{Name: "paneer masala", Price: 80},
	}
}

// MenuStore reads and mutates the single menu document. Staff-only checks
// happen in the handlers; the store applies mutations unconditionally.
type MenuStore struct {
	Collection *mongo.Collection
}

// Get returns the current menu, inserting the default set if none exists.
func (s *MenuStore) Get(ctx context.Context) (models.Menu, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var menu models.Menu
	err := s.Collection.FindOne(ctx, bson.M{}).Decode(&menu)
	if err == mongo.ErrNoDocuments {
		menu = models.Menu{Items: DefaultMenu()}
		result, insErr := s.Collection.InsertOne(ctx, menu)
		if insErr != nil {
			return models.Menu{}, insErr
		}
		if id, ok := result.InsertedID.(primitive.ObjectID); ok {
			menu.ID = id
		}
		return menu, nil
	}
	if err != nil {
		return models.Menu{}, err
	}
	return menu, nil
}

// Upsert sets the price for an item, inserting it at the end of the menu if
// it is new. Names are lowercased.
func (s *MenuStore) Upsert(ctx context.Context, name string, price int) error {
	menu, err := s.Get(ctx)
	if err != nil {
		return err
	}

	name = strings.ToLower(strings.TrimSpace(name))
	updated := false
	for i := range menu.Items {
		if menu.Items[i].Name == name {
			menu.Items[i].Price = price
			updated = true
			break
		}
	}
	if !updated {
		menu.Items = append(menu.Items, models.MenuEntry{Name: name, Price: price})
	}

	return s.save(ctx, menu)
}

// Remove deletes an item from the menu. Removing the current daily special
// clears the special so it never dangles.
func (s *MenuStore) Remove(ctx context.Context, name string) error {
	menu, err := s.Get(ctx)
	if err != nil {
		return err
	}

	name = strings.ToLower(strings.TrimSpace(name))
	idx := -1
	for i := range menu.Items {
		if menu.Items[i].Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotFound
	}
	menu.Items = append(menu.Items[:idx], menu.Items[idx+1:]...)
	if menu.DailySpecial == name {
		menu.DailySpecial = ""
	}

	return s.save(ctx, menu)
}

// SetSpecial marks an existing item as the daily special.
func (s *MenuStore) SetSpecial(ctx context.Context, name string) error {
	menu, err := s.Get(ctx)
	if err != nil {
		return err
	}

	name = strings.ToLower(strings.TrimSpace(name))
	if !menu.Has(name) {
		return ErrNotOnMenu
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	_, err = s.Collection.UpdateOne(ctx, bson.M{"_id": menu.ID},
		bson.M{"$set": bson.M{"daily_special": name}})
	return err
}

func (s *MenuStore) save(ctx context.Context, menu models.Menu) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	set := bson.M{"items": menu.Items}
	update := bson.M{"$set": set}
	if menu.DailySpecial == "" {
		update["$unset"] = bson.M{"daily_special": ""}
	} else {
		set["daily_special"] = menu.DailySpecial
	}
	_, err := s.Collection.UpdateOne(ctx, bson.M{"_id": menu.ID}, update)
	return err
}
