// Package application coordinates order use cases.
package application

import "example.com/clean/internal/orders/domain"

// Repository stores orders.
type Repository interface {
	Save(o *domain.Order) error
}

// OrderService places orders.
type OrderService struct {
	repo Repository
}

// NewOrderService wires an OrderService.
func NewOrderService(repo Repository) *OrderService {
	return &OrderService{repo: repo}
}

// PlaceOrder validates and stores an order.
func (s *OrderService) PlaceOrder(o *domain.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}
	return s.repo.Save(o)
}
