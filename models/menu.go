package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MenuEntry is one item on the canteen menu. Names are stored lowercased.
type MenuEntry struct {
	Name  string `json:"name" bson:"name"`
	Price int    `json:"price" bson:"price"`
}

// Menu is the single menu document. Items is an ordered array so that the
// numbered menu listing and the "first item" special fallback are
// deterministic across reads.
type Menu struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Items        []MenuEntry        `json:"items" bson:"items"`
	DailySpecial string             `json:"daily_special,omitempty" bson:"daily_special,omitempty"`
}

// Price returns the price for a (lowercased, trimmed) item name.
func (m Menu) Price(name string) (int, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, it := range m.Items {
		if it.Name == name {
			return it.Price, true
		}
	}
	return 0, false
}

func (m Menu) Has(name string) bool {
	_, ok := m.Price(name)
	return ok
}

// Special returns the item surfaced as today's special. When staff has not
// set one explicitly the first menu item is returned with recommended=true.
func (m Menu) Special() (entry MenuEntry, recommended bool, ok bool) {
	if m.DailySpecial != "" {
		if price, found := m.Price(m.DailySpecial); found {
			return MenuEntry{Name: m.DailySpecial, Price: price}, false, true
		}
	}
	if len(m.Items) == 0 {
		return MenuEntry{}, false, false
	}
	return m.Items[0], true, true
}

// Capitalize renders an item name for display: first letter upper, rest as-is.
func Capitalize(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
