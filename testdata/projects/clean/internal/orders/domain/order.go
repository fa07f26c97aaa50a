// Package domain holds the order aggregate.
package domain

import (
	"errors"
	"time"
)

// ErrEmptyOrder is returned when an order has no lines.
var ErrEmptyOrder = errors.New("order has no lines")

// Order is a customer purchase.
type Order struct {
	ID        string
	Lines     []Line
	CreatedAt time.Time
}

// Line is one product in an order.
type Line struct {
	SKU      string
	Quantity int
}

// NewOrder creates an order stamped with the current time.
func NewOrder(id string, lines ...Line) *Order {
	return &Order{ID: id, Lines: lines, CreatedAt: time.Now()}
}

// Validate checks the order invariants.
func (o *Order) Validate() error {
	if len(o.Lines) == 0 {
		return ErrEmptyOrder
	}
	return nil
}
