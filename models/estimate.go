package models

import (
	"time"

	"gorm.io/gorm"
)

// Estimate statuses
const (
	EstimateStatusPending  = "pending"
	EstimateStatusAccepted = "accepted"
	EstimateStatusRejected = "rejected"
)

// Estimate represents a tailor's priced, timed bid on an order.
// The unique index on (order_id, tailor_id) makes "one bid per tailor"
// structural rather than enforced by scanning.
type Estimate struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	OrderID          uint           `gorm:"not null;uniqueIndex:idx_estimates_order_tailor" json:"order_id"`
	TailorID         uint           `gorm:"not null;uniqueIndex:idx_estimates_order_tailor" json:"tailor_id"`
	Tailor           User           `gorm:"foreignKey:TailorID" json:"tailor"`
	Price            float64        `gorm:"not null" json:"price"`
	DeliveryTimeDays int            `gorm:"not null" json:"delivery_time_days"`
	Message          string         `gorm:"type:text" json:"message"`
	Materials        StringList     `gorm:"type:text" json:"materials"`
	Status           string         `gorm:"not null;default:'pending'" json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Estimate model
func (Estimate) TableName() string {
	return "estimates"
}
