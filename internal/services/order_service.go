package services

import (
	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// OrderService exposes read access to the order ledger. All writes go
// through the checkout and cancellation coordinators.
type OrderService struct {
	orderRepo repositories.OrderRepository
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
	}
}

// ListOrders retrieves all of a user's orders.
func (s *OrderService) ListOrders(userID string) ([]models.Order, error) {
	orders, err := s.orderRepo.GetByUser(userID)
	if err != nil {
		return nil, apperrors.Internal("could not retrieve orders", err)
	}
	return orders, nil
}

// GetOrder retrieves a single order, checking it belongs to the user.
func (s *OrderService) GetOrder(userID, orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, apperrors.NotFound("order not found")
	}
	if order.UserID != userID {
		return nil, apperrors.Forbidden("order does not belong to user")
	}
	return order, nil
}
