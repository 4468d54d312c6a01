package models

import "gorm.io/gorm"

// Cart is a user's in-progress selection of products. A cart is created
// lazily on the first item add and closed exactly once, at a successful
// checkout. It is never reopened.
type Cart struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	UserID     string `json:"user_id" gorm:"type:varchar(36);index" validate:"required"`
	Checkout   bool   `json:"checkout"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// CartItem is a single product entry in a cart. Name, Description and Price
// are denormalized copies captured at add time; the price snapshot, not the
// current product price, is what checkout charges. At most one open item may
// exist per (cart, product) pair and quantity is bounded 1-5 by policy.
type CartItem struct {
	ID          string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	CartID      string  `json:"cart_id" gorm:"type:varchar(36);index" validate:"required"`
	ProductID   string  `json:"product_id" gorm:"type:varchar(36);index" validate:"required"`
	UserID      string  `json:"user_id" gorm:"type:varchar(36);index" validate:"required"`
	Quantity    int     `json:"quantity" validate:"required,min=1,max=5"`
	Price       float64 `json:"price"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Checkout    bool    `json:"checkout"`
	gorm.Model          // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// MinItemQuantity and MaxItemQuantity bound the per-item quantity policy.
const (
	MinItemQuantity = 1
	MaxItemQuantity = 5
)
