package repositories

import (
	"storefront/internal/models"
)

// OrderRepository defines read access to the order ledger. Orders are only
// written by the checkout and cancellation coordinators through the
// CheckoutStore; handlers read them here.
type OrderRepository interface {
	GetByUser(userID string) ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
}
