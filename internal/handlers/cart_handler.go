package handlers

import (
	"fmt"
	"log"
	"storefront/internal/apperrors"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the cart, including checkout.
type CartHandler struct {
	cartService     *services.CartService
	checkoutService *services.CheckoutService
	validate        *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cartService *services.CartService, checkoutService *services.CheckoutService) *CartHandler {
	return &CartHandler{
		cartService:     cartService,
		checkoutService: checkoutService,
		validate:        validator.New(),
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Post("/add", h.HandleAddItem)
	cartRoutes.Post("/remove", h.HandleRemoveItem)
	cartRoutes.Post("/update", h.HandleUpdateQuantity)
	cartRoutes.Post("/checkout", h.HandleCheckout)
}

// HandleGetCart returns the open items of the user's current cart.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	items, err := h.cartService.ListItems(userID)
	if err != nil {
		log.Printf("Error listing cart for user %s: %v", userID, err)
		return c.Status(apperrors.StatusCode(err)).JSON(fiber.Map{
			"message": apperrors.Message(err),
		})
	}
	return c.JSON(fiber.Map{
		"cart": items,
	})
}

// AddItemRequest is the request body for adding a product to the cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1,max=5"`
}

// HandleAddItem adds a product to the user's cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing add-item request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	item, err := h.cartService.AddItem(userID, req.ProductID, req.Quantity)
	if err != nil {
		log.Printf("Error adding item to cart for user %s: %v", userID, err)
		return c.Status(apperrors.StatusCode(err)).JSON(fiber.Map{
			"message": apperrors.Message(err),
		})
	}
	return c.JSON(fiber.Map{
		"item_added": item,
	})
}

// RemoveItemRequest is the request body for removing a cart item.
type RemoveItemRequest struct {
	CartItemID string `json:"cart_item_id" validate:"required"`
}

// HandleRemoveItem removes an item from the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	var req RemoveItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}
	if err := h.cartService.RemoveItem(req.CartItemID); err != nil {
		return c.Status(apperrors.StatusCode(err)).JSON(fiber.Map{
			"message": apperrors.Message(err),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Removed successfully",
	})
}

// UpdateQuantityRequest is the request body for nudging an item quantity.
type UpdateQuantityRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required"`
}

// HandleUpdateQuantity changes an open cart item's quantity by +1 or -1.
func (h *CartHandler) HandleUpdateQuantity(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var req UpdateQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}
	if err := h.cartService.UpdateQuantity(userID, req.ProductID, req.Quantity); err != nil {
		return c.Status(apperrors.StatusCode(err)).JSON(fiber.Map{
			"message": apperrors.Message(err),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Updated successfully",
	})
}

// HandleCheckout converts the user's cart into a paid order.
func (h *CartHandler) HandleCheckout(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	var req services.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing checkout request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.PaymentToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Payment token not found",
		})
	}
	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	result, err := h.checkoutService.Checkout(userID, req)
	if err != nil {
		log.Printf("Error during checkout for user %s: %v", userID, err)
		return c.Status(apperrors.StatusCode(err)).JSON(fiber.Map{
			"message": apperrors.Message(err),
		})
	}
	return c.JSON(fiber.Map{
		"order":          result.Order,
		"receipt_mailed": result.ReceiptMailed,
	})
}
