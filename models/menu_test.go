package models

import (
	"testing"
	"time"
)

func sampleMenu() Menu {
	return Menu{Items: []MenuEntry{
		{Name: "idly", Price: 20},
		{Name: "dosa", Price: 30},
	}}
}

func TestMenuPrice(t *testing.T) {
	m := sampleMenu()

	price, ok := m.Price("idly")
	if !ok || price != 20 {
		t.Fatalf("Price(idly) = %d, %v; want 20, true", price, ok)
	}

	// lookups are case-insensitive and trimmed
	price, ok = m.Price("  Dosa ")
	if !ok || price != 30 {
		t.Fatalf("Price(  Dosa ) = %d, %v; want 30, true", price, ok)
	}

	if _, ok := m.Price("pizza"); ok {
		t.Fatal("Price(pizza) should not be found")
	}
}

func TestMenuSpecialFallsBackToFirstItem(t *testing.T) {
	m := sampleMenu()

	entry, recommended, ok := m.Special()
	if !ok {
		t.Fatal("Special() should succeed on a non-empty menu")
	}
	if !recommended {
		t.Fatal("Special() without an explicit special must be flagged recommended")
	}
	if entry.Name != "idly" || entry.Price != 20 {
		t.Fatalf("Special() = %+v; want first item idly/20", entry)
	}
}

func TestMenuSpecialExplicit(t *testing.T) {
	m := sampleMenu()
	m.DailySpecial = "dosa"

	entry, recommended, ok := m.Special()
	if !ok || recommended {
		t.Fatalf("Special() ok=%v recommended=%v; want true, false", ok, recommended)
	}
	if entry.Name != "dosa" || entry.Price != 30 {
		t.Fatalf("Special() = %+v; want dosa/30", entry)
	}
}

func TestMenuSpecialEmptyMenu(t *testing.T) {
	var m Menu
	if _, _, ok := m.Special(); ok {
		t.Fatal("Special() on an empty menu should report no item")
	}
}

func TestCapitalize(t *testing.T) {
	cases := map[string]string{
		"idly":       "Idly",
		"fried rice": "Fried rice",
		"":           "",
	}
	for in, want := range cases {
		if got := Capitalize(in); got != want {
			t.Errorf("Capitalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOrderViewFormatsMinutePrecision(t *testing.T) {
	o := Order{
		StudentID: "student1",
		Item:      "dosa",
		Status:    OrderPending,
		CreatedAt: time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
	}
	v := o.View()
	if v.CreatedAt != "2025-03-14 09:26" {
		t.Fatalf("View().CreatedAt = %q; want minute precision", v.CreatedAt)
	}
}
