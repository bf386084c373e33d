package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wearmade/wearmade-api/config"
	"github.com/wearmade/wearmade-api/middleware"
	"github.com/wearmade/wearmade-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// apiError is a handler-level error carrying a stable code for client UIs to
// branch on. Lifecycle rules return these from inside transactions so the
// rollback and the response stay consistent.
type apiError struct {
	Status  int
	Code    string
	Message string
}

func (e *apiError) Error() string {
	return e.Message
}

func errNotFound(message string) *apiError {
	return &apiError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: message}
}

func errForbidden(message string) *apiError {
	return &apiError{Status: http.StatusForbidden, Code: "FORBIDDEN", Message: message}
}

func errInvalidState(message string) *apiError {
	return &apiError{Status: http.StatusConflict, Code: "INVALID_STATE", Message: message}
}

func errConflict(message string) *apiError {
	return &apiError{Status: http.StatusConflict, Code: "CONFLICT", Message: message}
}

func errValidation(message string) *apiError {
	return &apiError{Status: http.StatusBadRequest, Code: "VALIDATION_ERROR", Message: message}
}

// respondError writes the error envelope for an apiError, or a generic
// DATABASE_ERROR for anything unexpected
func respondError(c *gin.Context, err error) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.Status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    apiErr.Code,
				"message": apiErr.Message,
			},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "DATABASE_ERROR",
			"message": "Operation failed",
		},
	})
}

// currentUser resolves the authenticated actor's profile. On failure it writes
// the error response and returns false.
func currentUser(c *gin.Context) (*models.User, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return nil, false
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User profile not found. Please create a profile first.",
			},
		})
		return nil, false
	}

	return &user, true
}

// lockForUpdate takes a per-row lock so concurrent mutations of the same order
// serialize. SQLite (tests) has no FOR UPDATE and serializes writes on its own.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// loadOrderForUpdate fetches an order under the update lock
func loadOrderForUpdate(tx *gorm.DB, orderID string) (*models.Order, error) {
	var order models.Order
	if err := lockForUpdate(tx).First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("Order not found")
		}
		return nil, err
	}
	return &order, nil
}

// idString renders a numeric id the way URL parameters arrive
func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// deactivateChat closes the order's chat, if one exists. Called inside the same
// transaction as a terminal status change.
func deactivateChat(tx *gorm.DB, orderID uint) error {
	return tx.Model(&models.Chat{}).
		Where("order_id = ?", orderID).
		Update("is_active", false).Error
}
