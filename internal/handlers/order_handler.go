package handlers

import (
	"log"
	"storefront/internal/apperrors"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for the order ledger: listing,
// fetching and cancelling orders.
type OrderHandler struct {
	orderService  *services.OrderService
	refundService *services.RefundService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *services.OrderService, refundService *services.RefundService) *OrderHandler {
	return &OrderHandler{
		orderService:  orderService,
		refundService: refundService,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/:id/cancel", h.HandleCancelOrder)
}

// HandleGetOrders retrieves the authenticated user's orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	orders, err := h.orderService.ListOrders(userID)
	if err != nil {
		log.Printf("Error getting orders for user %s: %v", userID, err)
		return c.Status(apperrors.StatusCode(err)).JSON(fiber.Map{
			"message": apperrors.Message(err),
		})
	}
	return c.JSON(fiber.Map{
		"orders": orders,
	})
}

// HandleGetOrderByID retrieves a single order belonging to the user.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	orderID := c.Params("id")
	order, err := h.orderService.GetOrder(userID, orderID)
	if err != nil {
		log.Printf("Error getting order %s: %v", orderID, err)
		return c.Status(apperrors.StatusCode(err)).JSON(fiber.Map{
			"message": apperrors.Message(err),
		})
	}
	return c.JSON(order)
}

// HandleCancelOrder cancels a received, successfully-paid order and starts
// its refund.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	orderID := c.Params("id")

	result, err := h.refundService.Cancel(userID, orderID)
	if err != nil {
		log.Printf("Error cancelling order %s: %v", orderID, err)
		return c.Status(apperrors.StatusCode(err)).JSON(fiber.Map{
			"message": apperrors.Message(err),
		})
	}
	return c.JSON(fiber.Map{
		"message":                 "Order cancelled, refund started",
		"cancellation_email_sent": result.CancellationEmailSent,
	})
}
