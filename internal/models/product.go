package models

import "gorm.io/gorm"

// Product represents a product in the store.
//
// Quantity is the on-hand stock and must never go negative; every decrement
// goes through the guarded repository operation. The review aggregates are
// maintained incrementally by the feedback service.
type Product struct {
	ID            string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name          string  `json:"name" validate:"required,min=3,max=100"`
	Description   string  `json:"description" validate:"omitempty,max=500"`
	Price         float64 `json:"price" validate:"required,gt=0"`
	Quantity      int     `json:"quantity" validate:"gte=0"`
	TotalStars    int     `json:"total_stars"`
	TotalReviews  int     `json:"total_reviews"`
	AverageReview float64 `json:"average_review"`
	gorm.Model            // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
