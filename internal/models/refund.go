package models

import "gorm.io/gorm"

// Refund is created once per cancellation attempt. RefundID stays empty
// until the gateway confirms the refund; backfilling it is best-effort
// reconciliation metadata and never blocks the client response.
type Refund struct {
	ID            string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	RefundID      string `json:"refund_id"`
	TransactionID string `json:"transaction_id"`
	OrderID       string `json:"order_id" gorm:"type:varchar(36);index"`
	UserID        string `json:"user_id" gorm:"type:varchar(36);index"`
	gorm.Model           // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
