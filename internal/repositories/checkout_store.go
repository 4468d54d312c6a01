package repositories

import (
	"errors"

	"storefront/internal/models"
)

// ErrInsufficientStock is returned by DecrementQuantity when the guarded
// decrement would drive a product's quantity below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrNotCancellable is returned by MarkOrderCancelled when the order is not
// in the received/successful state the cancellation requires.
var ErrNotCancellable = errors.New("order not cancellable")

// CheckoutStore is the aggregated data access the checkout and cancellation
// coordinators run on. Transaction scopes a group of calls to one atomic
// unit; outside a Transaction every call is its own unit.
//
// Any code path that decrements a product's quantity must do so through
// DecrementQuantity inside the same transaction as the dependent write, so
// the check-then-decrement is atomic per product row.
type CheckoutStore interface {
	// Transaction runs fn against a store view whose writes commit
	// together or not at all. fn returning an error aborts the whole
	// unit, restoring the state from before it started.
	Transaction(fn func(tx CheckoutStore) error) error

	UserByID(id string) (*models.User, error)
	// DetachCart clears the user's open-cart reference so concurrent
	// add-to-cart calls start a fresh cart. Committed before any external
	// call, this is what makes a cart checkoutable at most once.
	DetachCart(userID string) error

	// OpenCartItems returns the not-yet-checked-out items of a cart.
	OpenCartItems(cartID string) ([]models.CartItem, error)
	// CartItems returns every item of a cart, open or closed. The
	// cancellation coordinator uses it to restore inventory.
	CartItems(cartID string) ([]models.CartItem, error)
	// CloseCart marks the cart and its open items as checked out.
	CloseCart(cartID string) error

	// ProductsForUpdate loads the products, locking their rows for the
	// duration of the enclosing transaction where the backend supports
	// row locks.
	ProductsForUpdate(ids []string) ([]models.Product, error)
	// DecrementQuantity subtracts qty from the product's on-hand
	// quantity, failing with ErrInsufficientStock instead of going
	// negative.
	DecrementQuantity(productID string, qty int) error
	// IncrementQuantity restores qty units of stock. Unconditionally safe.
	IncrementQuantity(productID string, qty int) error

	CreateOrder(order *models.Order) error
	OrderByID(id string) (*models.Order, error)
	// SettleOrder finalizes a charged order: payment successful, order
	// received, external charge reference and receipt recorded.
	SettleOrder(orderID, transactionID, receiptURL string) error
	// MarkOrderCancelled moves a received/successful order to
	// cancelled/refund_started, failing with ErrNotCancellable if the
	// order is in any other state.
	MarkOrderCancelled(orderID string) error

	AppendSoldProduct(sp *models.SoldProduct) error

	CreateRefund(refund *models.Refund) error
	// SetRefundID backfills the gateway-confirmed refund reference.
	SetRefundID(id, externalRefundID string) error
}
