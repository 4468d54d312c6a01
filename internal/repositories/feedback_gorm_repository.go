package repositories

import (
	"fmt"
	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMFeedbackRepository is a GORM implementation of FeedbackRepository.
type GORMFeedbackRepository struct {
	db *gorm.DB
}

// NewGORMFeedbackRepository creates a new instance of GORMFeedbackRepository.
func NewGORMFeedbackRepository(db *gorm.DB) *GORMFeedbackRepository {
	return &GORMFeedbackRepository{
		db: db,
	}
}

// GetByProduct retrieves all feedback for a product.
func (r *GORMFeedbackRepository) GetByProduct(productID string) ([]models.Feedback, error) {
	var feedbacks []models.Feedback
	if err := r.db.Where("product_id = ?", productID).Find(&feedbacks).Error; err != nil {
		return nil, fmt.Errorf("failed to get feedback for product %s: %w", productID, err)
	}
	return feedbacks, nil
}

// GetByUserAndProduct retrieves a user's feedback for a product.
func (r *GORMFeedbackRepository) GetByUserAndProduct(userID, productID string) (*models.Feedback, error) {
	var feedback models.Feedback
	err := r.db.First(&feedback, "user_id = ? AND product_id = ?", userID, productID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("feedback for product %s by user %s not found", productID, userID)
		}
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	return &feedback, nil
}

// SaveWithProduct upserts the feedback row and the product aggregates in
// one transaction.
func (r *GORMFeedbackRepository) SaveWithProduct(feedback *models.Feedback, product *models.Product) error {
	if feedback.ID == "" {
		feedback.ID = uuid.New().String()
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(feedback).Error; err != nil {
			return fmt.Errorf("failed to save feedback: %w", err)
		}
		if err := tx.Save(product).Error; err != nil {
			return fmt.Errorf("failed to update product aggregates: %w", err)
		}
		return nil
	})
}

// Delete removes a user's feedback for a product, returning the deleted row.
func (r *GORMFeedbackRepository) Delete(userID, productID string) (*models.Feedback, error) {
	var feedback models.Feedback
	err := r.db.First(&feedback, "user_id = ? AND product_id = ?", userID, productID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("feedback for product %s by user %s not found", productID, userID)
		}
		return nil, fmt.Errorf("failed to find feedback for deletion: %w", err)
	}
	if err := r.db.Delete(&feedback).Error; err != nil {
		return nil, fmt.Errorf("failed to delete feedback: %w", err)
	}
	return &feedback, nil
}
