package repositories

import (
	"fmt"
	"sync"

	"storefront/internal/models"

	"github.com/google/uuid"
)

// MockCheckoutStore is an in-memory implementation of CheckoutStore.
// Transactions hold one big lock and roll state back on error, so it gives
// the same atomicity and serializability the GORM store gets from the
// database. Tests seed it directly and read it back through the interface.
type MockCheckoutStore struct {
	mu    sync.Mutex
	state *mockState
}

type mockState struct {
	users    map[string]models.User
	products map[string]models.Product
	carts    map[string]models.Cart
	items    map[string]models.CartItem
	orders   map[string]models.Order
	refunds  map[string]models.Refund
	sold     []models.SoldProduct
}

func (s *mockState) clone() *mockState {
	c := &mockState{
		users:    make(map[string]models.User, len(s.users)),
		products: make(map[string]models.Product, len(s.products)),
		carts:    make(map[string]models.Cart, len(s.carts)),
		items:    make(map[string]models.CartItem, len(s.items)),
		orders:   make(map[string]models.Order, len(s.orders)),
		refunds:  make(map[string]models.Refund, len(s.refunds)),
		sold:     append([]models.SoldProduct(nil), s.sold...),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.carts {
		c.carts[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.refunds {
		c.refunds[k] = v
	}
	return c
}

// NewMockCheckoutStore creates a new instance of MockCheckoutStore.
func NewMockCheckoutStore() *MockCheckoutStore {
	return &MockCheckoutStore{
		state: &mockState{
			users:    make(map[string]models.User),
			products: make(map[string]models.Product),
			carts:    make(map[string]models.Cart),
			items:    make(map[string]models.CartItem),
			orders:   make(map[string]models.Order),
			refunds:  make(map[string]models.Refund),
		},
	}
}

// Seed helpers for tests.

// SeedUser stores a user.
func (s *MockCheckoutStore) SeedUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.users[u.ID] = u
}

// SeedProduct stores a product.
func (s *MockCheckoutStore) SeedProduct(p models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.products[p.ID] = p
}

// SeedCart stores a cart.
func (s *MockCheckoutStore) SeedCart(c models.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.carts[c.ID] = c
}

// SeedCartItem stores a cart item.
func (s *MockCheckoutStore) SeedCartItem(i models.CartItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.items[i.ID] = i
}

// SeedOrder stores an order.
func (s *MockCheckoutStore) SeedOrder(o models.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.orders[o.ID] = o
}

// Inspection helpers for tests.

// Orders returns all stored orders.
func (s *MockCheckoutStore) Orders() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Order, 0, len(s.state.orders))
	for _, o := range s.state.orders {
		out = append(out, o)
	}
	return out
}

// Refunds returns all stored refunds.
func (s *MockCheckoutStore) Refunds() []models.Refund {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Refund, 0, len(s.state.refunds))
	for _, r := range s.state.refunds {
		out = append(out, r)
	}
	return out
}

// SoldProducts returns the sold-product ledger.
func (s *MockCheckoutStore) SoldProducts() []models.SoldProduct {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.SoldProduct(nil), s.state.sold...)
}

// CartByID returns a stored cart.
func (s *MockCheckoutStore) CartByID(id string) (models.Cart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.state.carts[id]
	return c, ok
}

// ProductByID returns a stored product.
func (s *MockCheckoutStore) ProductByID(id string) (models.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.state.products[id]
	return p, ok
}

// Transaction runs fn under the store lock and rolls back on error.
func (s *MockCheckoutStore) Transaction(fn func(tx CheckoutStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.state.clone()
	if err := fn(&mockTx{state: s.state}); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

// Non-transactional calls lock per call and delegate to the same logic.

func (s *MockCheckoutStore) UserByID(id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&mockTx{state: s.state}).UserByID(id)
}

func (s *MockCheckoutStore) DetachCart(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&mockTx{state: s.state}).DetachCart(userID)
}

func (s *MockCheckoutStore) OpenCartItems(cartID string) ([]models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&mockTx{state: s.state}).OpenCartItems(cartID)
}

func (s *MockCheckoutStore) CartItems(cartID string) ([]models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&mockTx{state: s.state}).CartItems(cartID)
}

func (s *MockCheckoutStore) CloseCart(cartID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&mockTx{state: s.state}).CloseCart(cartID)
}

func (s *MockCheckoutStore) ProductsForUpdate(ids []string) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&mockTx{state: s.state}).ProductsForUpdate(ids)
}

func (s *MockCheckoutStore) DecrementQuantity(productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&mockTx{state: s.state}).DecrementQuantity(productID, qty)
}

func (s *MockCheckoutStore) IncrementQuantity(productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&mockTx{state: s.state}).IncrementQuantity(productID, qty)
}

func (s *MockCheckoutStore) CreateOrder(order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&mockTx{state: s.state}).CreateOrder(order)
}

func (s *MockCheckoutStore) OrderByID(id string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&mockTx{state: s.state}).OrderByID(id)
}

func (s *MockCheckoutStore) SettleOrder(orderID, transactionID, receiptURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&mockTx{state: s.state}).SettleOrder(orderID, transactionID, receiptURL)
}

func (s *MockCheckoutStore) MarkOrderCancelled(orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&mockTx{state: s.state}).MarkOrderCancelled(orderID)
}

func (s *MockCheckoutStore) AppendSoldProduct(sp *models.SoldProduct) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&mockTx{state: s.state}).AppendSoldProduct(sp)
}

func (s *MockCheckoutStore) CreateRefund(refund *models.Refund) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&mockTx{state: s.state}).CreateRefund(refund)
}

func (s *MockCheckoutStore) SetRefundID(id, externalRefundID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&mockTx{state: s.state}).SetRefundID(id, externalRefundID)
}

// mockTx operates on the shared state without locking; the enclosing
// MockCheckoutStore call holds the lock.
type mockTx struct {
	state *mockState
}

// Transaction on an already-open transaction just runs fn in place.
func (t *mockTx) Transaction(fn func(tx CheckoutStore) error) error {
	return fn(t)
}

func (t *mockTx) UserByID(id string) (*models.User, error) {
	u, ok := t.state.users[id]
	if !ok {
		return nil, fmt.Errorf("user with ID %s not found", id)
	}
	return &u, nil
}

func (t *mockTx) DetachCart(userID string) error {
	u, ok := t.state.users[userID]
	if !ok {
		return fmt.Errorf("user with ID %s not found for cart detach", userID)
	}
	u.CartID = ""
	t.state.users[userID] = u
	return nil
}

func (t *mockTx) OpenCartItems(cartID string) ([]models.CartItem, error) {
	var items []models.CartItem
	for _, i := range t.state.items {
		if i.CartID == cartID && !i.Checkout {
			items = append(items, i)
		}
	}
	return items, nil
}

func (t *mockTx) CartItems(cartID string) ([]models.CartItem, error) {
	var items []models.CartItem
	for _, i := range t.state.items {
		if i.CartID == cartID {
			items = append(items, i)
		}
	}
	return items, nil
}

func (t *mockTx) CloseCart(cartID string) error {
	c, ok := t.state.carts[cartID]
	if !ok {
		return fmt.Errorf("cart with ID %s not found for close", cartID)
	}
	c.Checkout = true
	t.state.carts[cartID] = c
	for id, i := range t.state.items {
		if i.CartID == cartID && !i.Checkout {
			i.Checkout = true
			t.state.items[id] = i
		}
	}
	return nil
}

func (t *mockTx) ProductsForUpdate(ids []string) ([]models.Product, error) {
	var products []models.Product
	for _, id := range ids {
		if p, ok := t.state.products[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

func (t *mockTx) DecrementQuantity(productID string, qty int) error {
	p, ok := t.state.products[productID]
	if !ok || p.Quantity < qty {
		return fmt.Errorf("product %s: %w", productID, ErrInsufficientStock)
	}
	p.Quantity -= qty
	t.state.products[productID] = p
	return nil
}

func (t *mockTx) IncrementQuantity(productID string, qty int) error {
	p, ok := t.state.products[productID]
	if !ok {
		return fmt.Errorf("product with ID %s not found for restock", productID)
	}
	p.Quantity += qty
	t.state.products[productID] = p
	return nil
}

func (t *mockTx) CreateOrder(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	t.state.orders[order.ID] = *order
	return nil
}

func (t *mockTx) OrderByID(id string) (*models.Order, error) {
	o, ok := t.state.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s not found", id)
	}
	return &o, nil
}

func (t *mockTx) SettleOrder(orderID, transactionID, receiptURL string) error {
	o, ok := t.state.orders[orderID]
	if !ok {
		return fmt.Errorf("order with ID %s not found for settlement", orderID)
	}
	o.PaymentStatus = models.PaymentSuccessful
	o.OrderStatus = models.OrderReceived
	o.TransactionID = transactionID
	o.ReceiptURL = receiptURL
	t.state.orders[orderID] = o
	return nil
}

func (t *mockTx) MarkOrderCancelled(orderID string) error {
	o, ok := t.state.orders[orderID]
	if !ok || o.OrderStatus != models.OrderReceived || o.PaymentStatus != models.PaymentSuccessful {
		return fmt.Errorf("order %s: %w", orderID, ErrNotCancellable)
	}
	o.OrderStatus = models.OrderCancelled
	o.PaymentStatus = models.PaymentRefundStarted
	t.state.orders[orderID] = o
	return nil
}

func (t *mockTx) AppendSoldProduct(sp *models.SoldProduct) error {
	if sp.ID == "" {
		sp.ID = uuid.New().String()
	}
	t.state.sold = append(t.state.sold, *sp)
	return nil
}

func (t *mockTx) CreateRefund(refund *models.Refund) error {
	if refund.ID == "" {
		refund.ID = uuid.New().String()
	}
	t.state.refunds[refund.ID] = *refund
	return nil
}

func (t *mockTx) SetRefundID(id, externalRefundID string) error {
	r, ok := t.state.refunds[id]
	if !ok {
		return fmt.Errorf("refund with ID %s not found", id)
	}
	r.RefundID = externalRefundID
	t.state.refunds[id] = r
	return nil
}
