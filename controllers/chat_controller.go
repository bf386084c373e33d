package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wearmade/wearmade-api/config"
	"github.com/wearmade/wearmade-api/models"
	"github.com/wearmade/wearmade-api/ws"
	"gorm.io/gorm"
)

// CreateChatRequest represents the request body for opening a chat
type CreateChatRequest struct {
	OrderID uint `json:"order_id" binding:"required"`
}

// SendChatMessageRequest represents the request body for sending a message
type SendChatMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// findOrCreateChat returns the order's chat, creating it if absent. The unique
// index on order_id backstops the race where both parties open the chat at
// once: the loser of the insert re-reads the winner's row.
func findOrCreateChat(tx *gorm.DB, orderID, customerID, tailorID uint, active bool) (*models.Chat, error) {
	var chat models.Chat
	err := tx.Where("order_id = ?", orderID).First(&chat).Error
	if err == nil {
		return &chat, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	chat = models.Chat{
		OrderID:    orderID,
		CustomerID: customerID,
		TailorID:   tailorID,
		IsActive:   active,
	}
	if err := tx.Create(&chat).Error; err != nil {
		// Lost the race: the other participant created it first
		if ferr := tx.Where("order_id = ?", orderID).First(&chat).Error; ferr != nil {
			return nil, err
		}
	}
	return &chat, nil
}

// chatForOrder resolves the order, checks participant access and returns the
// (lazily created) chat
func chatForOrder(db *gorm.DB, orderID string, user *models.User) (*models.Chat, error) {
	var order models.Order
	if err := db.First(&order, "id = ?", orderID).Error; err != nil {
		return nil, errNotFound("Order not found")
	}

	if !order.IsParticipant(user.ID) {
		return nil, errForbidden("You do not have access to this order's chat")
	}
	if order.TailorID == nil {
		return nil, errInvalidState("Chat opens once an estimate has been accepted")
	}

	return findOrCreateChat(db, order.ID, order.CustomerID, *order.TailorID, !order.IsTerminal())
}

// CreateOrGetChat handles POST /api/v1/chat - opens (or returns) the chat for
// an order the caller participates in
func CreateOrGetChat(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	chat, err := chatForOrder(db, idString(req.OrderID), user)
	if err != nil {
		respondError(c, err)
		return
	}

	var result models.Chat
	if err := db.Preload("Customer").Preload("Tailor").First(&result, chat.ID).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// GetChatByOrder handles GET /api/v1/chat/order/:orderId - fetches the chat
// for an order including its message log
func GetChatByOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	chat, err := chatForOrder(db, c.Param("orderId"), user)
	if err != nil {
		respondError(c, err)
		return
	}

	var result models.Chat
	if err := db.Preload("Customer").
		Preload("Tailor").
		Preload("Messages", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("chat_messages.created_at ASC, chat_messages.id ASC")
		}).
		Preload("Messages.Sender").
		First(&result, chat.ID).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// ListChats handles GET /api/v1/chat - lists the caller's chats with their
// unread counts, computed on demand
func ListChats(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var chats []models.Chat
	if err := db.Preload("Customer").
		Preload("Tailor").
		Where("customer_id = ? OR tailor_id = ?", user.ID, user.ID).
		Order("updated_at DESC").
		Find(&chats).Error; err != nil {
		respondError(c, err)
		return
	}

	type chatSummary struct {
		models.Chat
		UnreadCount int64 `json:"unread_count"`
	}

	summaries := make([]chatSummary, 0, len(chats))
	for _, chat := range chats {
		var unread int64
		if err := db.Model(&models.ChatMessage{}).
			Where("chat_id = ? AND sender_id != ? AND is_read = ?", chat.ID, user.ID, false).
			Count(&unread).Error; err != nil {
			respondError(c, err)
			return
		}
		summaries = append(summaries, chatSummary{Chat: chat, UnreadCount: unread})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    summaries,
	})
}

// SendChatMessage handles POST /api/v1/chat/:chatId/message - appends a message
// to an active chat and pushes it to the other participant's sockets
func SendChatMessage(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var chat models.Chat
	if err := db.First(&chat, "id = ?", c.Param("chatId")).Error; err != nil {
		respondError(c, errNotFound("Chat not found"))
		return
	}

	if !chat.IsParticipant(user.ID) {
		respondError(c, errForbidden("You are not a participant of this chat"))
		return
	}
	if !chat.IsActive {
		respondError(c, errInvalidState("Chat is closed"))
		return
	}

	var req SendChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	message := models.ChatMessage{
		ChatID:   chat.ID,
		SenderID: user.ID,
		Text:     req.Text,
	}
	if err := db.Create(&message).Error; err != nil {
		respondError(c, err)
		return
	}

	if err := db.Preload("Sender").First(&message, message.ID).Error; err != nil {
		respondError(c, err)
		return
	}

	// Live push to the other participant; the stored row is the durable copy
	ws.GetHub().BroadcastMessage(chat.ID, user.ID, ws.MessagePayload{
		Sender:    user.ID,
		Text:      message.Text,
		Timestamp: message.CreatedAt,
	})

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    message,
	})
}

// MarkChatRead handles PUT /api/v1/chat/:chatId/read - marks every message not
// sent by the caller as read. Idempotent.
func MarkChatRead(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var chat models.Chat
	if err := db.First(&chat, "id = ?", c.Param("chatId")).Error; err != nil {
		respondError(c, errNotFound("Chat not found"))
		return
	}

	if !chat.IsParticipant(user.ID) {
		respondError(c, errForbidden("You are not a participant of this chat"))
		return
	}

	result := db.Model(&models.ChatMessage{}).
		Where("chat_id = ? AND sender_id != ? AND is_read = ?", chat.ID, user.ID, false).
		Update("is_read", true)
	if result.Error != nil {
		respondError(c, result.Error)
		return
	}

	ws.GetHub().BroadcastRead(chat.ID, user.ID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"marked_read": result.RowsAffected},
	})
}

// GetUnreadCount handles GET /api/v1/chat/unread-count - the badge number: how
// many of the caller's chats hold at least one unread message from the other
// party
func GetUnreadCount(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var count int64
	if err := db.Model(&models.ChatMessage{}).
		Joins("JOIN chats ON chats.id = chat_messages.chat_id").
		Where("(chats.customer_id = ? OR chats.tailor_id = ?)", user.ID, user.ID).
		Where("chat_messages.sender_id != ? AND chat_messages.is_read = ?", user.ID, false).
		Distinct("chat_messages.chat_id").
		Count(&count).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"unread_chats": count},
	})
}
