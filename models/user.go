package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleCustomer = "customer"
	RoleTailor   = "tailor"
)

// User represents a user in the system (customer or tailor)
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Auth0ID   string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Role      string         `gorm:"not null;default:'customer'" json:"role"` // "customer" or "tailor"
	Bio       string         `gorm:"type:text" json:"bio"`
	// Aggregate review score, maintained by the review workflow for tailors
	Rating      float64        `gorm:"not null;default:0" json:"rating"`
	RatingCount int            `gorm:"not null;default:0" json:"rating_count"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsCustomer reports whether the user holds the customer role
func (u *User) IsCustomer() bool {
	return u.Role == RoleCustomer
}

// IsTailor reports whether the user holds the tailor role
func (u *User) IsTailor() bool {
	return u.Role == RoleTailor
}
