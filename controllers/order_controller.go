package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wearmade/wearmade-api/config"
	"github.com/wearmade/wearmade-api/models"
	"github.com/wearmade/wearmade-api/services"
	"gorm.io/gorm"
)

// CreateOrderRequest represents the request body for creating an order
type CreateOrderRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	BudgetMin   float64  `json:"budget_min"`
	BudgetMax   float64  `json:"budget_max" binding:"required"`
	ImageKeys   []string `json:"image_keys"`
}

// CreateOrder handles POST /api/v1/orders - creates a new order (customers only)
func CreateOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if !user.IsCustomer() {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only customers can create orders",
			},
		})
		return
	}

	var req CreateOrderRequest
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

	if !models.IsValidCategory(req.Category) {
		respondError(c, errValidation("Unknown order category"))
		return
	}
	// Budget range must be non-negative with a strictly greater maximum
	if req.BudgetMin < 0 || req.BudgetMax <= req.BudgetMin {
		respondError(c, errValidation("Budget range requires max greater than min"))
		return
	}

	order := models.Order{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		BudgetMin:   req.BudgetMin,
		BudgetMax:   req.BudgetMax,
		ImageKeys:   models.StringList(req.ImageKeys),
		Status:      models.OrderStatusPending,
		CustomerID:  user.ID,
	}

	db := config.GetDB()
	if err := db.Create(&order).Error; err != nil {
		respondError(c, err)
		return
	}

	if err := db.Preload("Customer").First(&order, order.ID).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    order,
	})
}

// ListOrders handles GET /api/v1/orders - customers see their own orders,
// tailors see open orders plus the ones they bid on or were assigned to
func ListOrders(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	query := db.Preload("Customer").
		Preload("Tailor").
		Preload("Estimates.Tailor").
		Order("created_at DESC")

	if user.IsCustomer() {
		query = query.Where("customer_id = ?", user.ID)
	} else {
		query = query.Where(
			"status IN ? OR tailor_id = ? OR id IN (SELECT order_id FROM estimates WHERE tailor_id = ? AND deleted_at IS NULL)",
			[]string{models.OrderStatusPending, models.OrderStatusQuoted},
			user.ID, user.ID,
		)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// GetOrder handles GET /api/v1/orders/:id - returns one order with its
// estimates, progress and review
func GetOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var order models.Order
	if err := db.Preload("Customer").
		Preload("Tailor").
		Preload("Estimates.Tailor").
		Preload("Progress").
		Preload("Review").
		First(&order, "id = ?", c.Param("id")).Error; err != nil {
		respondError(c, errNotFound("Order not found"))
		return
	}

	// Participants always have access; other tailors only while the order is
	// still open for bids
	canView := order.IsParticipant(user.ID) ||
		(user.IsTailor() && order.AcceptsEstimates())
	if !canView {
		respondError(c, errForbidden("You do not have permission to view this order"))
		return
	}

	attachImageURLs(&order)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// DeleteOrder handles DELETE /api/v1/orders/:id - removes an order that is
// still pending and has no estimates
func DeleteOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	db := config.GetDB()
	err := db.Transaction(func(tx *gorm.DB) error {
		order, err := loadOrderForUpdate(tx, c.Param("id"))
		if err != nil {
			return err
		}

		if order.CustomerID != user.ID {
			return errForbidden("Only the owning customer can delete an order")
		}
		if order.Status != models.OrderStatusPending {
			return errInvalidState("Only pending orders can be deleted")
		}

		var estimateCount int64
		if err := tx.Model(&models.Estimate{}).
			Where("order_id = ?", order.ID).
			Count(&estimateCount).Error; err != nil {
			return err
		}
		if estimateCount > 0 {
			return errInvalidState("Orders with estimates cannot be deleted")
		}

		return tx.Delete(order).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": true},
	})
}

// attachImageURLs fills in presigned URLs for the order's image keys when the
// S3 service is available
func attachImageURLs(order *models.Order) {
	s3 := services.GetS3Service()
	if s3 == nil || len(order.ImageKeys) == 0 {
		return
	}

	urls := make([]string, 0, len(order.ImageKeys))
	for _, key := range order.ImageKeys {
		url, err := s3.GetPresignedURL(key)
		if err != nil {
			continue
		}
		urls = append(urls, url)
	}
	order.ImageURLs = urls
}
