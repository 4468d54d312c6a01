package repositories

import (
	"fmt"
	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// GetByID retrieves a cart by its ID.
func (r *GORMCartRepository) GetByID(id string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.First(&cart, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("cart with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get cart by ID %s: %w", id, err)
	}
	return &cart, nil
}

// Create creates a new cart.
func (r *GORMCartRepository) Create(cart *models.Cart) error {
	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	if err := r.db.Create(cart).Error; err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}
	return nil
}

// OpenItems returns the not-yet-checked-out items of a cart.
func (r *GORMCartRepository) OpenItems(cartID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Where("cart_id = ? AND checkout = ?", cartID, false).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get items for cart %s: %w", cartID, err)
	}
	return items, nil
}

// OpenItem returns the open item for a (cart, product) pair.
func (r *GORMCartRepository) OpenItem(cartID, productID string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.First(&item, "cart_id = ? AND product_id = ? AND checkout = ?", cartID, productID, false).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("cart item for product %s not found in cart %s", productID, cartID)
		}
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}
	return &item, nil
}

// CreateItem adds an item to a cart.
func (r *GORMCartRepository) CreateItem(item *models.CartItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := r.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to create cart item: %w", err)
	}
	return nil
}

// UpdateItem updates an existing cart item.
func (r *GORMCartRepository) UpdateItem(item *models.CartItem) error {
	res := r.db.Save(item)
	if res.Error != nil {
		return fmt.Errorf("failed to update cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item with ID %s not found for update", item.ID)
	}
	return nil
}

// DeleteItem removes a cart item by its ID.
func (r *GORMCartRepository) DeleteItem(id string) error {
	res := r.db.Delete(&models.CartItem{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item with ID %s not found for deletion", id)
	}
	return nil
}

// HasPurchased reports whether the user has a checked-out item for the
// product.
func (r *GORMCartRepository) HasPurchased(userID, productID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ? AND checkout = ?", userID, productID, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check purchase history: %w", err)
	}
	return count > 0, nil
}
