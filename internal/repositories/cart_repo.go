package repositories

import "storefront/internal/models"

// CartRepository defines the interface for cart and cart-item data access
// used by the cart service. The checkout coordinator goes through the
// transactional CheckoutStore instead.
type CartRepository interface {
	GetByID(id string) (*models.Cart, error)
	Create(cart *models.Cart) error
	// OpenItems returns the not-yet-checked-out items of a cart.
	OpenItems(cartID string) ([]models.CartItem, error)
	// OpenItem returns the single open item for a (cart, product) pair,
	// or a not-found error when none exists.
	OpenItem(cartID, productID string) (*models.CartItem, error)
	CreateItem(item *models.CartItem) error
	UpdateItem(item *models.CartItem) error
	DeleteItem(id string) error
	// HasPurchased reports whether the user has a checked-out cart item
	// for the product. The feedback service uses this as its
	// purchaser gate.
	HasPurchased(userID, productID string) (bool, error)
}
