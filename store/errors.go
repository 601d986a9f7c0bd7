package store

import "errors"

var (
	// ErrNotFound is returned when a menu item or order id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotOnMenu is returned when an operation references an item that is
	// absent from the current menu.
	ErrNotOnMenu = errors.New("item not in menu")
)
