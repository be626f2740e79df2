package order

import "errors"

var (
	// ErrDishNotFound means the phrase did not resolve to any menu item.
	ErrDishNotFound = errors.New("dish not found in menu")
	// ErrEmptyOrder means the user has no active order to operate on.
	ErrEmptyOrder = errors.New("order is empty")
	// ErrItemNotInOrder means the dish exists on the menu but not in the order.
	ErrItemNotInOrder = errors.New("item not in order")
	// ErrLogWrite means the confirmed-order log append failed. The active
	// order is left intact when this is returned.
	ErrLogWrite = errors.New("order log write failed")
	// ErrLogRead means the confirmed-order log could not be read.
	ErrLogRead = errors.New("order log read failed")
)
