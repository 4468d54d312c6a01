package models

import "gorm.io/gorm"

// User represents a user of the store.
//
// CartID references the user's single open cart, or is empty when no cart is
// in progress. Checkout clears it in the same transaction that creates the
// order, so a later add-to-cart starts a fresh cart.
type User struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username   string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email      string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password   string `gorm:"type:varchar(255)" validate:"required,min=6"` // No json tag for security
	CartID     string `json:"cart_id" gorm:"type:varchar(36)"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
