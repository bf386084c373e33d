package models

import (
	"time"

	"gorm.io/gorm"
)

// Review represents a customer's one-time review of a completed order.
// The unique index on order_id makes "one review per order" structural.
type Review struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	OrderID    uint           `gorm:"not null;uniqueIndex" json:"order_id"`
	CustomerID uint           `gorm:"not null;index" json:"customer_id"`
	TailorID   uint           `gorm:"not null;index" json:"tailor_id"`
	Rating     int            `gorm:"not null" json:"rating"` // 1-5
	Comment    string         `gorm:"type:text" json:"comment"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Review model
func (Review) TableName() string {
	return "reviews"
}
