package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wearmade/wearmade-api/config"
	"github.com/wearmade/wearmade-api/models"
	"gorm.io/gorm"
)

// UpdateProgressRequest represents the request body for a progress update
type UpdateProgressRequest struct {
	Stage     string   `json:"stage" binding:"required"`
	Status    string   `json:"status" binding:"required"`
	Notes     string   `json:"notes"`
	ImageKeys []string `json:"image_keys"`
}

// CancelOrderRequest represents the request body for cancelling an order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// UpdateProgress handles POST /api/v1/orders/:id/progress - the assigned
// tailor upserts one production stage. The first update moves the order to
// in_progress; completing every stage moves it to ready.
func UpdateProgress(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req UpdateProgressRequest
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

	if !models.IsValidStage(req.Stage) {
		respondError(c, errValidation("Unknown production stage"))
		return
	}
	if !models.IsValidStageStatus(req.Status) {
		respondError(c, errValidation("Unknown stage status"))
		return
	}

	db := config.GetDB()
	var stage models.ProgressStage
	var orderStatus string

	err := db.Transaction(func(tx *gorm.DB) error {
		order, err := loadOrderForUpdate(tx, c.Param("id"))
		if err != nil {
			return err
		}

		if !order.IsAssignedTailor(user.ID) {
			return errForbidden("Only the assigned tailor can update progress")
		}
		switch order.Status {
		case models.OrderStatusAccepted, models.OrderStatusInProgress, models.OrderStatusReady:
			// progress updates allowed
		default:
			return errInvalidState("Order is not in production")
		}

		// Upsert by (order, stage): exactly one row per stage
		err = tx.Where("order_id = ? AND stage = ?", order.ID, req.Stage).First(&stage).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			stage = models.ProgressStage{
				OrderID: order.ID,
				Stage:   req.Stage,
			}
		} else if err != nil {
			return err
		}

		stage.Status = req.Status
		stage.Notes = req.Notes
		stage.ImageKeys = models.StringList(req.ImageKeys)
		if req.Status == models.StageStatusCompleted {
			if stage.CompletedAt == nil {
				now := time.Now()
				stage.CompletedAt = &now
			}
		} else {
			stage.CompletedAt = nil
		}
		if err := tx.Save(&stage).Error; err != nil {
			return err
		}

		// Recompute order status from the stage board
		var completed int64
		if err := tx.Model(&models.ProgressStage{}).
			Where("order_id = ? AND status = ?", order.ID, models.StageStatusCompleted).
			Count(&completed).Error; err != nil {
			return err
		}

		newStatus := order.Status
		if completed == int64(len(models.ProductionStages)) {
			newStatus = models.OrderStatusReady
		} else if order.Status == models.OrderStatusAccepted {
			newStatus = models.OrderStatusInProgress
		} else if order.Status == models.OrderStatusReady {
			// a stage was reopened
			newStatus = models.OrderStatusInProgress
		}

		if newStatus != order.Status {
			if err := tx.Model(order).Update("status", newStatus).Error; err != nil {
				return err
			}
		}
		orderStatus = newStatus
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"stage":        stage,
			"order_status": orderStatus,
		},
	})
}

// CompleteOrder handles POST /api/v1/orders/:id/complete - the assigned tailor
// closes out production. Terminal: the chat is deactivated with it.
func CompleteOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var orderID uint

	err := db.Transaction(func(tx *gorm.DB) error {
		order, err := loadOrderForUpdate(tx, c.Param("id"))
		if err != nil {
			return err
		}

		if !order.IsAssignedTailor(user.ID) {
			return errForbidden("Only the assigned tailor can complete the order")
		}
		if !order.CanComplete() {
			return errInvalidState("Order cannot be completed in its current status")
		}

		now := time.Now()
		if err := tx.Model(order).Updates(map[string]interface{}{
			"status":       models.OrderStatusCompleted,
			"completed_at": now,
		}).Error; err != nil {
			return err
		}

		orderID = order.ID
		return deactivateChat(tx, order.ID)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	var result models.Order
	if err := db.Preload("Customer").Preload("Tailor").First(&result, orderID).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// CancelOrder handles POST /api/v1/orders/:id/cancel - either party backs out
// of a non-terminal order. Terminal: the chat is deactivated with it.
func CancelOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req CancelOrderRequest
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
	var orderID uint

	err := db.Transaction(func(tx *gorm.DB) error {
		order, err := loadOrderForUpdate(tx, c.Param("id"))
		if err != nil {
			return err
		}

		if !order.IsParticipant(user.ID) {
			return errForbidden("Only the customer or the assigned tailor can cancel the order")
		}
		if order.IsTerminal() {
			return errInvalidState("Order is already closed")
		}

		now := time.Now()
		if err := tx.Model(order).Updates(map[string]interface{}{
			"status":          models.OrderStatusCancelled,
			"cancel_reason":   req.Reason,
			"cancelled_by_id": user.ID,
			"cancelled_at":    now,
		}).Error; err != nil {
			return err
		}

		orderID = order.ID
		return deactivateChat(tx, order.ID)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	var result models.Order
	if err := db.Preload("Customer").Preload("Tailor").First(&result, orderID).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}
