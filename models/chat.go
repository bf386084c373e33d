package models

import (
	"time"

	"gorm.io/gorm"
)

// Chat represents the single conversation attached to an order. It can only
// exist once the order has an assigned tailor; the unique index on order_id
// keeps concurrent create attempts from producing duplicates.
type Chat struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	OrderID    uint           `gorm:"not null;uniqueIndex" json:"order_id"`
	Order      Order          `gorm:"foreignKey:OrderID" json:"-"`
	CustomerID uint           `gorm:"not null;index" json:"customer_id"`
	Customer   User           `gorm:"foreignKey:CustomerID" json:"customer"`
	TailorID   uint           `gorm:"not null;index" json:"tailor_id"`
	Tailor     User           `gorm:"foreignKey:TailorID" json:"tailor"`
	IsActive   bool           `gorm:"not null;default:true" json:"is_active"`
	Messages   []ChatMessage  `gorm:"foreignKey:ChatID" json:"messages,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Chat model
func (Chat) TableName() string {
	return "chats"
}

// IsParticipant reports whether the given user belongs to the chat
func (c *Chat) IsParticipant(userID uint) bool {
	return c.CustomerID == userID || c.TailorID == userID
}

// OtherParticipant returns the chat member that is not the given user
func (c *Chat) OtherParticipant(userID uint) uint {
	if c.CustomerID == userID {
		return c.TailorID
	}
	return c.CustomerID
}

// ChatMessage represents one entry in a chat's append-only message log.
// Messages are never edited or deleted; is_read is the only mutable field.
type ChatMessage struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ChatID    uint           `gorm:"not null;index" json:"chat_id"`
	SenderID  uint           `gorm:"not null;index" json:"sender_id"`
	Sender    User           `gorm:"foreignKey:SenderID" json:"sender"`
	Text      string         `gorm:"type:text;not null" json:"text"`
	IsRead    bool           `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the ChatMessage model
func (ChatMessage) TableName() string {
	return "chat_messages"
}
