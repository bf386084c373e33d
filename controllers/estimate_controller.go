package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wearmade/wearmade-api/config"
	"github.com/wearmade/wearmade-api/models"
	"github.com/wearmade/wearmade-api/services"
	"gorm.io/gorm"
)

// SubmitEstimateRequest represents the request body for submitting an estimate
type SubmitEstimateRequest struct {
	Price            float64  `json:"price" binding:"required,gt=0"`
	DeliveryTimeDays int      `json:"delivery_time_days" binding:"required,gte=1"`
	Message          string   `json:"message"`
	Materials        []string `json:"materials"`
}

// AcceptEstimateRequest represents the request body for accepting an estimate
type AcceptEstimateRequest struct {
	TailorID uint `json:"tailor_id" binding:"required"`
}

// SubmitEstimate handles POST /api/v1/orders/:id/estimate - a tailor bids on
// an open order. One estimate per tailor per order.
func SubmitEstimate(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if !user.IsTailor() {
		respondError(c, errForbidden("Only tailors can submit estimates"))
		return
	}

	var req SubmitEstimateRequest
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
	var estimate models.Estimate
	var customer models.User
	var orderTitle string

	err := db.Transaction(func(tx *gorm.DB) error {
		order, err := loadOrderForUpdate(tx, c.Param("id"))
		if err != nil {
			return err
		}

		if !order.AcceptsEstimates() {
			return errInvalidState("Order is no longer accepting estimates")
		}

		var existing int64
		if err := tx.Model(&models.Estimate{}).
			Where("order_id = ? AND tailor_id = ?", order.ID, user.ID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return errConflict("You have already submitted an estimate for this order")
		}

		estimate = models.Estimate{
			OrderID:          order.ID,
			TailorID:         user.ID,
			Price:            req.Price,
			DeliveryTimeDays: req.DeliveryTimeDays,
			Message:          req.Message,
			Materials:        models.StringList(req.Materials),
			Status:           models.EstimateStatusPending,
		}
		if err := tx.Create(&estimate).Error; err != nil {
			return err
		}

		// First estimate moves the order out of pending
		if order.Status == models.OrderStatusPending {
			if err := tx.Model(order).
				Update("status", models.OrderStatusQuoted).Error; err != nil {
				return err
			}
		}

		orderTitle = order.Title
		return tx.First(&customer, order.CustomerID).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}

	// Best-effort notification, fired after the transaction committed
	services.NotifyAsync(customer.Email, services.TemplateEstimateReceived, map[string]string{
		"tailor_name": user.Name,
		"price":       fmt.Sprintf("%.2f", req.Price),
		"order_title": orderTitle,
	})

	if err := db.Preload("Tailor").First(&estimate, estimate.ID).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    estimate,
	})
}

// AcceptEstimate handles POST /api/v1/orders/:id/accept-estimate - the owning
// customer picks one estimate, which assigns the tailor, fixes the final price
// and opens the chat
func AcceptEstimate(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req AcceptEstimateRequest
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
	var order *models.Order
	var tailor models.User

	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = loadOrderForUpdate(tx, c.Param("id"))
		if err != nil {
			return err
		}

		if order.CustomerID != user.ID {
			return errForbidden("Only the owning customer can accept an estimate")
		}
		if order.Status != models.OrderStatusQuoted {
			return errInvalidState("Order has no acceptable estimates in its current status")
		}

		var estimate models.Estimate
		if err := tx.Where("order_id = ? AND tailor_id = ?", order.ID, req.TailorID).
			First(&estimate).Error; err != nil {
			return errNotFound("No estimate from that tailor on this order")
		}

		if err := tx.Model(&estimate).
			Update("status", models.EstimateStatusAccepted).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":                      models.OrderStatusAccepted,
			"tailor_id":                   estimate.TailorID,
			"selected_estimate_tailor_id": estimate.TailorID,
			"final_price":                 estimate.Price,
		}
		if err := tx.Model(order).Updates(updates).Error; err != nil {
			return err
		}

		// Open the chat as part of acceptance. createOrGetChat tolerates an
		// existing chat, so a concurrent explicit create cannot duplicate it.
		if _, err := findOrCreateChat(tx, order.ID, order.CustomerID, estimate.TailorID, true); err != nil {
			return err
		}

		return tx.First(&tailor, estimate.TailorID).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}

	services.NotifyAsync(tailor.Email, services.TemplateEstimateAccepted, map[string]string{
		"order_title": order.Title,
	})

	var result models.Order
	if err := db.Preload("Customer").
		Preload("Tailor").
		Preload("Estimates.Tailor").
		First(&result, order.ID).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}
