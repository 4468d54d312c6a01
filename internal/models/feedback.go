package models

import "gorm.io/gorm"

// Feedback is a purchaser's rating of a product. Stars is bounded 1-5; a
// user keeps at most one feedback row per product and updates replace it.
type Feedback struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID  string `json:"product_id" gorm:"type:varchar(36);index" validate:"required"`
	UserID     string `json:"user_id" gorm:"type:varchar(36);index" validate:"required"`
	Stars      int    `json:"stars" validate:"required,min=1,max=5"`
	Feedback   string `json:"feedback" validate:"omitempty,max=1000"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
