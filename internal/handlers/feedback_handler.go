package handlers

import (
	"fmt"
	"log"
	"storefront/internal/apperrors"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// FeedbackHandler handles HTTP requests for product feedback.
type FeedbackHandler struct {
	service  *services.FeedbackService
	validate *validator.Validate
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(service *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the feedback routes with the Fiber app.
func (h *FeedbackHandler) RegisterRoutes(router fiber.Router) {
	feedbackRoutes := router.Group("/feedback")
	feedbackRoutes.Get("/product/:productId", h.HandleListFeedback)
	feedbackRoutes.Get("/:productId", h.HandleGetFeedback)
	feedbackRoutes.Post("/", h.HandleSaveFeedback)
	feedbackRoutes.Delete("/:productId", h.HandleDeleteFeedback)
}

// SaveFeedbackRequest is the payload for creating or updating feedback.
type SaveFeedbackRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Stars     int    `json:"stars" validate:"required,min=1,max=5"`
	Feedback  string `json:"feedback"`
}

// HandleSaveFeedback creates or updates the caller's feedback for a product.
func (h *FeedbackHandler) HandleSaveFeedback(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	var req SaveFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing feedback request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
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

	if err := h.service.Save(userID, req.ProductID, req.Stars, req.Feedback); err != nil {
		log.Printf("Error saving feedback for product %s: %v", req.ProductID, err)
		return c.Status(apperrors.StatusCode(err)).JSON(fiber.Map{
			"message": apperrors.Message(err),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Feedback saved successfully",
	})
}

// HandleGetFeedback retrieves the caller's feedback for a product.
func (h *FeedbackHandler) HandleGetFeedback(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	productID := c.Params("productId")

	feedback, err := h.service.Get(userID, productID)
	if err != nil {
		return c.Status(apperrors.StatusCode(err)).JSON(fiber.Map{
			"message": apperrors.Message(err),
		})
	}
	return c.JSON(feedback)
}

// HandleListFeedback retrieves all feedback for a product.
func (h *FeedbackHandler) HandleListFeedback(c *fiber.Ctx) error {
	productID := c.Params("productId")

	feedbacks, err := h.service.List(productID)
	if err != nil {
		log.Printf("Error listing feedback for product %s: %v", productID, err)
		return c.Status(apperrors.StatusCode(err)).JSON(fiber.Map{
			"message": apperrors.Message(err),
		})
	}
	return c.JSON(feedbacks)
}

// HandleDeleteFeedback deletes the caller's feedback for a product.
func (h *FeedbackHandler) HandleDeleteFeedback(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	productID := c.Params("productId")

	feedback, err := h.service.Remove(userID, productID)
	if err != nil {
		return c.Status(apperrors.StatusCode(err)).JSON(fiber.Map{
			"message": apperrors.Message(err),
		})
	}
	return c.JSON(fiber.Map{
		"message":  "Feedback deleted successfully",
		"feedback": feedback,
	})
}
