package repositories

import (
	"fmt"
	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCheckoutStore is a GORM implementation of CheckoutStore.
type GORMCheckoutStore struct {
	db *gorm.DB
}

// NewGORMCheckoutStore creates a new instance of GORMCheckoutStore.
func NewGORMCheckoutStore(db *gorm.DB) *GORMCheckoutStore {
	return &GORMCheckoutStore{
		db: db,
	}
}

// Transaction runs fn inside a database transaction.
func (r *GORMCheckoutStore) Transaction(fn func(tx CheckoutStore) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GORMCheckoutStore{db: tx})
	})
}

// UserByID retrieves a user by ID.
func (r *GORMCheckoutStore) UserByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("user with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	return &user, nil
}

// DetachCart clears the user's open-cart reference.
func (r *GORMCheckoutStore) DetachCart(userID string) error {
	res := r.db.Model(&models.User{}).Where("id = ?", userID).Update("cart_id", "")
	if res.Error != nil {
		return fmt.Errorf("failed to detach cart for user %s: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s not found for cart detach", userID)
	}
	return nil
}

// OpenCartItems returns the not-yet-checked-out items of a cart.
func (r *GORMCheckoutStore) OpenCartItems(cartID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Where("cart_id = ? AND checkout = ?", cartID, false).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get open items for cart %s: %w", cartID, err)
	}
	return items, nil
}

// CartItems returns every item of a cart.
func (r *GORMCheckoutStore) CartItems(cartID string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Where("cart_id = ?", cartID).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get items for cart %s: %w", cartID, err)
	}
	return items, nil
}

// CloseCart marks the cart and its open items as checked out.
func (r *GORMCheckoutStore) CloseCart(cartID string) error {
	res := r.db.Model(&models.Cart{}).Where("id = ?", cartID).Update("checkout", true)
	if res.Error != nil {
		return fmt.Errorf("failed to close cart %s: %w", cartID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart with ID %s not found for close", cartID)
	}
	err := r.db.Model(&models.CartItem{}).
		Where("cart_id = ? AND checkout = ?", cartID, false).
		Update("checkout", true).Error
	if err != nil {
		return fmt.Errorf("failed to close items of cart %s: %w", cartID, err)
	}
	return nil
}

// ProductsForUpdate loads products, taking row locks where the backend
// supports them. SQLite has no FOR UPDATE; its single-writer transactions
// already serialize the check-then-decrement.
func (r *GORMCheckoutStore) ProductsForUpdate(ids []string) ([]models.Product, error) {
	q := r.db
	if r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var products []models.Product
	if err := q.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load products for reservation: %w", err)
	}
	return products, nil
}

// DecrementQuantity performs the guarded stock decrement. The quantity
// floor is enforced in the UPDATE itself so no interleaving can drive the
// stock negative.
func (r *GORMCheckoutStore) DecrementQuantity(productID string, qty int) error {
	res := r.db.Model(&models.Product{}).
		Where("id = ? AND quantity >= ?", productID, qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	if res.Error != nil {
		return fmt.Errorf("failed to decrement stock for product %s: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %s: %w", productID, ErrInsufficientStock)
	}
	return nil
}

// IncrementQuantity restores stock.
func (r *GORMCheckoutStore) IncrementQuantity(productID string, qty int) error {
	res := r.db.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("quantity", gorm.Expr("quantity + ?", qty))
	if res.Error != nil {
		return fmt.Errorf("failed to restore stock for product %s: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s not found for restock", productID)
	}
	return nil
}

// CreateOrder inserts a new order row.
func (r *GORMCheckoutStore) CreateOrder(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// OrderByID retrieves an order by its ID.
func (r *GORMCheckoutStore) OrderByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order with ID %s not found", id)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// SettleOrder finalizes a charged order.
func (r *GORMCheckoutStore) SettleOrder(orderID, transactionID, receiptURL string) error {
	res := r.db.Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"payment_status": models.PaymentSuccessful,
			"order_status":   models.OrderReceived,
			"transaction_id": transactionID,
			"receipt_url":    receiptURL,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to settle order %s: %w", orderID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s not found for settlement", orderID)
	}
	return nil
}

// MarkOrderCancelled moves a received/successful order to
// cancelled/refund_started. The state precondition lives in the WHERE
// clause so two racing cancels cannot both pass it.
func (r *GORMCheckoutStore) MarkOrderCancelled(orderID string) error {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND order_status = ? AND payment_status = ?",
			orderID, models.OrderReceived, models.PaymentSuccessful).
		Updates(map[string]interface{}{
			"order_status":   models.OrderCancelled,
			"payment_status": models.PaymentRefundStarted,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to cancel order %s: %w", orderID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s: %w", orderID, ErrNotCancellable)
	}
	return nil
}

// AppendSoldProduct writes one ledger entry.
func (r *GORMCheckoutStore) AppendSoldProduct(sp *models.SoldProduct) error {
	if sp.ID == "" {
		sp.ID = uuid.New().String()
	}
	if err := r.db.Create(sp).Error; err != nil {
		return fmt.Errorf("failed to append sold product: %w", err)
	}
	return nil
}

// CreateRefund inserts a refund record.
func (r *GORMCheckoutStore) CreateRefund(refund *models.Refund) error {
	if refund.ID == "" {
		refund.ID = uuid.New().String()
	}
	if err := r.db.Create(refund).Error; err != nil {
		return fmt.Errorf("failed to create refund: %w", err)
	}
	return nil
}

// SetRefundID backfills the gateway-confirmed refund reference.
func (r *GORMCheckoutStore) SetRefundID(id, externalRefundID string) error {
	res := r.db.Model(&models.Refund{}).Where("id = ?", id).Update("refund_id", externalRefundID)
	if res.Error != nil {
		return fmt.Errorf("failed to set refund id for %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("refund with ID %s not found", id)
	}
	return nil
}
