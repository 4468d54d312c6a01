package services_test

import (
	"fmt"
	"testing"

	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockFeedbackRepository is a mock implementation of repositories.FeedbackRepository
type MockFeedbackRepository struct {
	mock.Mock
}

func (m *MockFeedbackRepository) GetByProduct(productID string) ([]models.Feedback, error) {
	args := m.Called(productID)
	return args.Get(0).([]models.Feedback), args.Error(1)
}

func (m *MockFeedbackRepository) GetByUserAndProduct(userID, productID string) (*models.Feedback, error) {
	args := m.Called(userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Feedback), args.Error(1)
}

func (m *MockFeedbackRepository) SaveWithProduct(feedback *models.Feedback, product *models.Product) error {
	args := m.Called(feedback, product)
	return args.Error(0)
}

func (m *MockFeedbackRepository) Delete(userID, productID string) (*models.Feedback, error) {
	args := m.Called(userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Feedback), args.Error(1)
}

func TestFeedbackService_FirstFeedbackUpdatesAggregates(t *testing.T) {
	feedbackRepo := new(MockFeedbackRepository)
	productRepo := new(MockProductRepository)
	cartRepo := new(MockCartRepository)
	service := services.NewFeedbackService(feedbackRepo, productRepo, cartRepo)

	product := &models.Product{ID: "prod-1", Name: "Lamp", Price: 100, TotalStars: 7, TotalReviews: 2}

	cartRepo.On("HasPurchased", "user-1", "prod-1").Return(true, nil).Once()
	productRepo.On("GetByID", "prod-1").Return(product, nil).Once()
	feedbackRepo.On("GetByUserAndProduct", "user-1", "prod-1").Return(nil, fmt.Errorf("not found")).Once()
	feedbackRepo.On("SaveWithProduct", mock.AnythingOfType("*models.Feedback"), product).Return(nil).Once()

	err := service.Save("user-1", "prod-1", 4, "solid lamp")
	assert.NoError(t, err)
	// 7+4 stars over 3 reviews, rounded to one decimal.
	assert.Equal(t, 11, product.TotalStars)
	assert.Equal(t, 3, product.TotalReviews)
	assert.Equal(t, 3.7, product.AverageReview)

	feedbackRepo.AssertExpectations(t)
	cartRepo.AssertExpectations(t)
}

func TestFeedbackService_UpdateReplacesStars(t *testing.T) {
	feedbackRepo := new(MockFeedbackRepository)
	productRepo := new(MockProductRepository)
	cartRepo := new(MockCartRepository)
	service := services.NewFeedbackService(feedbackRepo, productRepo, cartRepo)

	product := &models.Product{ID: "prod-1", TotalStars: 5, TotalReviews: 1}
	existing := &models.Feedback{ID: "fb-1", ProductID: "prod-1", UserID: "user-1", Stars: 5, Feedback: "great"}

	cartRepo.On("HasPurchased", "user-1", "prod-1").Return(true, nil).Once()
	productRepo.On("GetByID", "prod-1").Return(product, nil).Once()
	feedbackRepo.On("GetByUserAndProduct", "user-1", "prod-1").Return(existing, nil).Once()
	feedbackRepo.On("SaveWithProduct", existing, product).Return(nil).Once()

	err := service.Save("user-1", "prod-1", 2, "")
	assert.NoError(t, err)
	// The review count is unchanged; the old stars were replaced.
	assert.Equal(t, 2, product.TotalStars)
	assert.Equal(t, 1, product.TotalReviews)
	assert.Equal(t, 2.0, product.AverageReview)
	assert.Equal(t, 2, existing.Stars)
	// Empty text keeps the previous feedback text.
	assert.Equal(t, "great", existing.Feedback)
}

func TestFeedbackService_OnlyPurchasersMayReview(t *testing.T) {
	feedbackRepo := new(MockFeedbackRepository)
	cartRepo := new(MockCartRepository)
	service := services.NewFeedbackService(feedbackRepo, new(MockProductRepository), cartRepo)

	cartRepo.On("HasPurchased", "user-1", "prod-1").Return(false, nil).Once()

	err := service.Save("user-1", "prod-1", 4, "never bought it")
	assert.Error(t, err)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
	cartRepo.AssertExpectations(t)
}

func TestFeedbackService_StarsBounds(t *testing.T) {
	service := services.NewFeedbackService(new(MockFeedbackRepository), new(MockProductRepository), new(MockCartRepository))

	err := service.Save("user-1", "prod-1", 0, "")
	assert.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidRequest, apperrors.KindOf(err))

	err = service.Save("user-1", "prod-1", 6, "")
	assert.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidRequest, apperrors.KindOf(err))
}

func TestFeedbackService_Remove(t *testing.T) {
	feedbackRepo := new(MockFeedbackRepository)
	service := services.NewFeedbackService(feedbackRepo, new(MockProductRepository), new(MockCartRepository))

	deleted := &models.Feedback{ID: "fb-1", ProductID: "prod-1", UserID: "user-1", Stars: 3}
	feedbackRepo.On("Delete", "user-1", "prod-1").Return(deleted, nil).Once()

	feedback, err := service.Remove("user-1", "prod-1")
	assert.NoError(t, err)
	assert.Equal(t, deleted, feedback)

	feedbackRepo.On("Delete", "user-1", "missing").Return(nil, fmt.Errorf("not found")).Once()
	_, err = service.Remove("user-1", "missing")
	assert.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	feedbackRepo.AssertExpectations(t)
}
