package models

import (
	"time"

	"gorm.io/gorm"
)

// Order statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusQuoted     = "quoted"
	OrderStatusAccepted   = "accepted"
	OrderStatusInProgress = "in_progress"
	OrderStatusReady      = "ready"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// Order categories
const (
	CategorySuit        = "suit"
	CategoryDress       = "dress"
	CategoryShirt       = "shirt"
	CategoryPants       = "pants"
	CategorySkirt       = "skirt"
	CategoryCoat        = "coat"
	CategoryTraditional = "traditional"
	CategoryAlteration  = "alteration"
	CategoryOther       = "other"
)

var orderCategories = map[string]bool{
	CategorySuit:        true,
	CategoryDress:       true,
	CategoryShirt:       true,
	CategoryPants:       true,
	CategorySkirt:       true,
	CategoryCoat:        true,
	CategoryTraditional: true,
	CategoryAlteration:  true,
	CategoryOther:       true,
}

// IsValidCategory reports whether the category belongs to the closed enum
func IsValidCategory(category string) bool {
	return orderCategories[category]
}

// Order represents a custom tailoring order in the system
type Order struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Title       string  `gorm:"not null" json:"title"`
	Description string  `gorm:"type:text;not null" json:"description"`
	Category    string  `gorm:"not null" json:"category"`
	BudgetMin   float64 `gorm:"not null" json:"budget_min"`
	BudgetMax   float64 `gorm:"not null" json:"budget_max"`
	Status      string  `gorm:"not null;default:'pending';index" json:"status"`

	// Opaque references to pre-uploaded images; upload happens elsewhere
	ImageKeys StringList `gorm:"type:text" json:"image_keys"`
	ImageURLs []string   `gorm:"-" json:"image_urls,omitempty"` // computed, presigned URLs

	CustomerID uint  `gorm:"not null;index" json:"customer_id"`
	Customer   User  `gorm:"foreignKey:CustomerID" json:"customer"`
	TailorID   *uint `gorm:"index" json:"tailor_id"` // set once, at estimate acceptance
	Tailor     *User `gorm:"foreignKey:TailorID" json:"tailor,omitempty"`

	Estimates []Estimate `gorm:"foreignKey:OrderID" json:"estimates,omitempty"`
	// set together with TailorID at acceptance, immutable thereafter
	SelectedEstimateTailorID *uint    `json:"selected_estimate_tailor_id"`
	FinalPrice               *float64 `json:"final_price"`

	Progress []ProgressStage `gorm:"foreignKey:OrderID" json:"progress,omitempty"`
	Review   *Review         `gorm:"foreignKey:OrderID" json:"review,omitempty"`

	CancelReason  *string    `json:"cancel_reason,omitempty"`
	CancelledByID *uint      `json:"cancelled_by_id,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`

	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsTerminal reports whether the order has reached a final status
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusCancelled
}

// AcceptsEstimates reports whether tailors may still bid on the order
func (o *Order) AcceptsEstimates() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusQuoted
}

// CanComplete reports whether the assigned tailor may mark the order completed
func (o *Order) CanComplete() bool {
	return o.Status == OrderStatusInProgress || o.Status == OrderStatusReady
}

// IsAssignedTailor reports whether the given user is the order's assigned tailor
func (o *Order) IsAssignedTailor(userID uint) bool {
	return o.TailorID != nil && *o.TailorID == userID
}

// IsParticipant reports whether the given user is the owning customer or the
// assigned tailor
func (o *Order) IsParticipant(userID uint) bool {
	return o.CustomerID == userID || o.IsAssignedTailor(userID)
}
