package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wearmade/wearmade-api/config"
	"github.com/wearmade/wearmade-api/models"
	"gorm.io/gorm"
)

// AddReviewRequest represents the request body for reviewing a completed order
type AddReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// AddReview handles POST /api/v1/orders/:id/review - the owning customer rates
// a completed order, once. The tailor's aggregate rating is recomputed in the
// same transaction as the review write.
func AddReview(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req AddReviewRequest
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

	if req.Rating < 1 || req.Rating > 5 {
		respondError(c, errValidation("Rating must be between 1 and 5"))
		return
	}

	db := config.GetDB()
	var review models.Review

	err := db.Transaction(func(tx *gorm.DB) error {
		order, err := loadOrderForUpdate(tx, c.Param("id"))
		if err != nil {
			return err
		}

		if order.CustomerID != user.ID {
			return errForbidden("Only the owning customer can review the order")
		}
		if order.Status != models.OrderStatusCompleted {
			return errInvalidState("Only completed orders can be reviewed")
		}

		var existing int64
		if err := tx.Model(&models.Review{}).
			Where("order_id = ?", order.ID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return errConflict("Order has already been reviewed")
		}

		review = models.Review{
			OrderID:    order.ID,
			CustomerID: user.ID,
			TailorID:   *order.TailorID,
			Rating:     req.Rating,
			Comment:    req.Comment,
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}

		return recomputeTailorRating(tx, *order.TailorID)
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    review,
	})
}

// recomputeTailorRating rebuilds the tailor's average and count from a full
// scan of their reviews, so the aggregate can never drift from the rows
func recomputeTailorRating(tx *gorm.DB, tailorID uint) error {
	type aggregate struct {
		Count int64
		Avg   float64
	}

	var agg aggregate
	if err := tx.Model(&models.Review{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS avg").
		Where("tailor_id = ?", tailorID).
		Scan(&agg).Error; err != nil {
		return err
	}

	return tx.Model(&models.User{}).
		Where("id = ?", tailorID).
		Updates(map[string]interface{}{
			"rating":       agg.Avg,
			"rating_count": agg.Count,
		}).Error
}
