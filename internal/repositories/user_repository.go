package repositories

import "storefront/internal/models"

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	// SetCartID points the user at a new open cart (or clears the
	// reference when cartID is empty).
	SetCartID(userID, cartID string) error
}
