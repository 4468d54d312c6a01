package services

import (
	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// CartService handles business logic for carts and cart items.
type CartService struct {
	userRepo    repositories.UserRepository
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(userRepo repositories.UserRepository, cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) *CartService {
	return &CartService{
		userRepo:    userRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// ListItems returns the open items of the user's current cart, or an empty
// list when the user has no open cart.
func (s *CartService) ListItems(userID string) ([]models.CartItem, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, apperrors.NotFound("user not found")
	}
	if user.CartID == "" {
		return []models.CartItem{}, nil
	}
	cart, err := s.cartRepo.GetByID(user.CartID)
	if err != nil || cart.Checkout {
		return []models.CartItem{}, nil
	}
	items, err := s.cartRepo.OpenItems(cart.ID)
	if err != nil {
		return nil, apperrors.Internal("could not load cart items", err)
	}
	return items, nil
}

// AddItem adds a product to the user's cart, creating the cart lazily on
// the first add. Name, description and price are snapshotted from the
// product at add time.
func (s *CartService) AddItem(userID, productID string, quantity int) (*models.CartItem, error) {
	if quantity < models.MinItemQuantity || quantity > models.MaxItemQuantity {
		return nil, apperrors.InvalidRequest("quantity limit max 5 min 1")
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, apperrors.NotFound("user not found")
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil || product.Quantity <= 0 {
		return nil, apperrors.InvalidRequest("product id not correct or product is not available")
	}

	cartID := user.CartID
	if cartID != "" {
		if _, err := s.cartRepo.OpenItem(cartID, productID); err == nil {
			return nil, apperrors.Conflict("item already in cart")
		}
	} else {
		cart := &models.Cart{UserID: userID, Checkout: false}
		if err := s.cartRepo.Create(cart); err != nil {
			return nil, apperrors.Internal("could not create cart", err)
		}
		if err := s.userRepo.SetCartID(userID, cart.ID); err != nil {
			return nil, apperrors.Internal("could not attach cart to user", err)
		}
		cartID = cart.ID
	}

	item := &models.CartItem{
		CartID:      cartID,
		ProductID:   product.ID,
		UserID:      userID,
		Quantity:    quantity,
		Price:       product.Price,
		Name:        product.Name,
		Description: product.Description,
		Checkout:    false,
	}
	if err := s.cartRepo.CreateItem(item); err != nil {
		return nil, apperrors.Internal("could not add item to cart", err)
	}
	return item, nil
}

// UpdateQuantity nudges an open cart item's quantity by +1 or -1, keeping
// it within the 1-5 policy bounds.
func (s *CartService) UpdateQuantity(userID, productID string, delta int) error {
	if delta != 1 && delta != -1 {
		return apperrors.InvalidRequest("quantity must be 1 or -1")
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return apperrors.NotFound("user not found")
	}
	if user.CartID == "" {
		return apperrors.NotFound("cart item not found")
	}
	item, err := s.cartRepo.OpenItem(user.CartID, productID)
	if err != nil {
		return apperrors.NotFound("cart item not found")
	}
	next := item.Quantity + delta
	if next < models.MinItemQuantity || next > models.MaxItemQuantity {
		return apperrors.InvalidRequest("only max 5 min 1 items per order")
	}
	item.Quantity = next
	if err := s.cartRepo.UpdateItem(item); err != nil {
		return apperrors.Internal("could not update cart item", err)
	}
	return nil
}

// RemoveItem deletes a cart item by its ID.
func (s *CartService) RemoveItem(cartItemID string) error {
	if err := s.cartRepo.DeleteItem(cartItemID); err != nil {
		return apperrors.NotFound("cannot find cart item to delete with specified id")
	}
	return nil
}
