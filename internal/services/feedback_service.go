package services

import (
	"math"

	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// FeedbackService handles product ratings. Only purchasers may leave
// feedback, and the product's review aggregates are updated in the same
// transaction as the feedback row.
type FeedbackService struct {
	feedbackRepo repositories.FeedbackRepository
	productRepo  repositories.ProductRepository
	cartRepo     repositories.CartRepository
}

// NewFeedbackService creates a new FeedbackService.
func NewFeedbackService(feedbackRepo repositories.FeedbackRepository, productRepo repositories.ProductRepository, cartRepo repositories.CartRepository) *FeedbackService {
	return &FeedbackService{
		feedbackRepo: feedbackRepo,
		productRepo:  productRepo,
		cartRepo:     cartRepo,
	}
}

// Save creates or updates the user's feedback for a product. Stars are
// required on first feedback and bounded 1-5; text is optional.
func (s *FeedbackService) Save(userID, productID string, stars int, text string) error {
	if stars < 1 || stars > 5 {
		return apperrors.InvalidRequest("stars must be at least 1 and at most 5")
	}
	bought, err := s.cartRepo.HasPurchased(userID, productID)
	if err != nil {
		return apperrors.Internal("could not check purchase history", err)
	}
	if !bought {
		return apperrors.Forbidden("only purchasers can leave feedback")
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return apperrors.NotFound("cannot find product with specified id")
	}

	feedback, err := s.feedbackRepo.GetByUserAndProduct(userID, productID)
	if err != nil {
		// First feedback for this product by this user.
		feedback = &models.Feedback{
			ProductID: productID,
			UserID:    userID,
			Stars:     stars,
			Feedback:  text,
		}
		product.TotalStars += stars
		product.TotalReviews++
	} else {
		product.TotalStars += stars - feedback.Stars
		feedback.Stars = stars
		if text != "" {
			feedback.Feedback = text
		}
	}
	product.AverageReview = roundToTenth(float64(product.TotalStars) / float64(product.TotalReviews))

	if err := s.feedbackRepo.SaveWithProduct(feedback, product); err != nil {
		return apperrors.Internal("could not save feedback", err)
	}
	return nil
}

// Get retrieves the user's feedback for a product.
func (s *FeedbackService) Get(userID, productID string) (*models.Feedback, error) {
	feedback, err := s.feedbackRepo.GetByUserAndProduct(userID, productID)
	if err != nil {
		return nil, apperrors.NotFound("feedback not found")
	}
	return feedback, nil
}

// List retrieves all feedback for a product.
func (s *FeedbackService) List(productID string) ([]models.Feedback, error) {
	feedbacks, err := s.feedbackRepo.GetByProduct(productID)
	if err != nil {
		return nil, apperrors.Internal("could not load feedback", err)
	}
	return feedbacks, nil
}

// Remove deletes the user's feedback for a product.
func (s *FeedbackService) Remove(userID, productID string) (*models.Feedback, error) {
	feedback, err := s.feedbackRepo.Delete(userID, productID)
	if err != nil {
		return nil, apperrors.NotFound("cannot find feedback to delete with specified id")
	}
	return feedback, nil
}

func roundToTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
