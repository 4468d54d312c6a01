package models

import "time"

// SoldProduct is an append-only ledger entry written after a charge is
// confirmed, in the same transaction as the inventory decrement. It feeds
// trending/analytics and is never updated.
type SoldProduct struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID string    `json:"product_id" gorm:"type:varchar(36);index"`
	Quantity  int       `json:"quantity"`
	OrderedAt time.Time `json:"ordered_at"`
}
