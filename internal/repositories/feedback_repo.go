package repositories

import "storefront/internal/models"

// FeedbackRepository defines the interface for feedback data access.
// SaveWithProduct writes the feedback row and the product's review
// aggregates in one transaction so the aggregates never drift from the
// rows they summarize.
type FeedbackRepository interface {
	GetByProduct(productID string) ([]models.Feedback, error)
	GetByUserAndProduct(userID, productID string) (*models.Feedback, error)
	SaveWithProduct(feedback *models.Feedback, product *models.Product) error
	Delete(userID, productID string) (*models.Feedback, error)
}
