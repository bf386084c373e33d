package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/wearmade/wearmade-api/config"
	"github.com/wearmade/wearmade-api/models"
	"github.com/stretchr/testify/assert"
)

func TestUpdateProgress(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	customer := createTestCustomer(t, db, "1")
	tailor := createTestTailor(t, db, "1")
	otherTailor := createTestTailor(t, db, "2")

	order := createTestOrder(t, db, customer.ID)
	db.Model(&order).Updates(map[string]interface{}{
		"status":    models.OrderStatusAccepted,
		"tailor_id": tailor.ID,
	})

	progressURL := fmt.Sprintf("/orders/%d/progress", order.ID)

	t.Run("Non-assigned tailor is forbidden", func(t *testing.T) {
		router := setupTestRouter()
		router.POST("/orders/:id/progress", mockAuthMiddleware(otherTailor.Auth0ID, otherTailor.Role, "mock-token"), UpdateProgress)

		w, response := doJSON(t, router, http.MethodPost, progressURL, map[string]interface{}{
			"stage":  "cutting",
			"status": "in_progress",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assertErrorCode(t, response, "FORBIDDEN")
	})

	t.Run("Unknown stage fails validation", func(t *testing.T) {
		router := setupTestRouter()
		router.POST("/orders/:id/progress", mockAuthMiddleware(tailor.Auth0ID, tailor.Role, "mock-token"), UpdateProgress)

		w, response := doJSON(t, router, http.MethodPost, progressURL, map[string]interface{}{
			"stage":  "ironing",
			"status": "in_progress",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assertErrorCode(t, response, "VALIDATION_ERROR")
	})

	t.Run("Unknown stage status fails validation", func(t *testing.T) {
		router := setupTestRouter()
		router.POST("/orders/:id/progress", mockAuthMiddleware(tailor.Auth0ID, tailor.Role, "mock-token"), UpdateProgress)

		w, response := doJSON(t, router, http.MethodPost, progressURL, map[string]interface{}{
			"stage":  "cutting",
			"status": "done",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assertErrorCode(t, response, "VALIDATION_ERROR")
	})

	t.Run("First update moves the order to in_progress", func(t *testing.T) {
		router := setupTestRouter()
		router.POST("/orders/:id/progress", mockAuthMiddleware(tailor.Auth0ID, tailor.Role, "mock-token"), UpdateProgress)

		w, response := doJSON(t, router, http.MethodPost, progressURL, map[string]interface{}{
			"stage":  "cutting",
			"status": "in_progress",
			"notes":  "Fabric cut started",
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, response["success"].(bool))

		data := response["data"].(map[string]interface{})
		assert.Equal(t, "in_progress", data["order_status"])

		var reloaded models.Order
		db.First(&reloaded, order.ID)
		assert.Equal(t, models.OrderStatusInProgress, reloaded.Status)
	})

	t.Run("Updating the same stage upserts rather than duplicates", func(t *testing.T) {
		router := setupTestRouter()
		router.POST("/orders/:id/progress", mockAuthMiddleware(tailor.Auth0ID, tailor.Role, "mock-token"), UpdateProgress)

		w, _ := doJSON(t, router, http.MethodPost, progressURL, map[string]interface{}{
			"stage":  "cutting",
			"status": "completed",
			"notes":  "Fabric cut done",
		})
		assert.Equal(t, http.StatusOK, w.Code)

		var count int64
		db.Model(&models.ProgressStage{}).
			Where("order_id = ? AND stage = ?", order.ID, models.StageCutting).
			Count(&count)
		assert.Equal(t, int64(1), count)

		var stage models.ProgressStage
		db.Where("order_id = ? AND stage = ?", order.ID, models.StageCutting).First(&stage)
		assert.Equal(t, models.StageStatusCompleted, stage.Status)
		assert.NotNil(t, stage.CompletedAt)
	})

	t.Run("Completing every stage makes the order ready", func(t *testing.T) {
		router := setupTestRouter()
		router.POST("/orders/:id/progress", mockAuthMiddleware(tailor.Auth0ID, tailor.Role, "mock-token"), UpdateProgress)

		for _, stage := range []string{"stitching", "fitting", "finishing", "quality_check"} {
			w, _ := doJSON(t, router, http.MethodPost, progressURL, map[string]interface{}{
				"stage":  stage,
				"status": "completed",
			})
			assert.Equal(t, http.StatusOK, w.Code)
		}

		var reloaded models.Order
		db.First(&reloaded, order.ID)
		assert.Equal(t, models.OrderStatusReady, reloaded.Status)
	})

	t.Run("Reopening a stage drops the order back to in_progress", func(t *testing.T) {
		router := setupTestRouter()
		router.POST("/orders/:id/progress", mockAuthMiddleware(tailor.Auth0ID, tailor.Role, "mock-token"), UpdateProgress)

		w, _ := doJSON(t, router, http.MethodPost, progressURL, map[string]interface{}{
			"stage":  "fitting",
			"status": "in_progress",
			"notes":  "Second fitting needed",
		})
		assert.Equal(t, http.StatusOK, w.Code)

		var reloaded models.Order
		db.First(&reloaded, order.ID)
		assert.Equal(t, models.OrderStatusInProgress, reloaded.Status)
	})
}

func TestCompleteOrder(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	customer := createTestCustomer(t, db, "1")
	tailor := createTestTailor(t, db, "1")
	otherTailor := createTestTailor(t, db, "2")

	order := createTestOrder(t, db, customer.ID)
	db.Model(&order).Updates(map[string]interface{}{
		"status":    models.OrderStatusInProgress,
		"tailor_id": tailor.ID,
	})
	db.Create(&models.Chat{
		OrderID:    order.ID,
		CustomerID: customer.ID,
		TailorID:   tailor.ID,
		IsActive:   true,
	})

	completeURL := fmt.Sprintf("/orders/%d/complete", order.ID)

	t.Run("Non-assigned tailor is forbidden", func(t *testing.T) {
		router := setupTestRouter()
		router.POST("/orders/:id/complete", mockAuthMiddleware(otherTailor.Auth0ID, otherTailor.Role, "mock-token"), CompleteOrder)

		w, response := doJSON(t, router, http.MethodPost, completeURL, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assertErrorCode(t, response, "FORBIDDEN")
	})

	t.Run("Assigned tailor completes the order and the chat closes", func(t *testing.T) {
		router := setupTestRouter()
		router.POST("/orders/:id/complete", mockAuthMiddleware(tailor.Auth0ID, tailor.Role, "mock-token"), CompleteOrder)

		w, response := doJSON(t, router, http.MethodPost, completeURL, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		data := response["data"].(map[string]interface{})
		assert.Equal(t, "completed", data["status"])
		assert.NotNil(t, data["completed_at"])

		var chat models.Chat
		db.Where("order_id = ?", order.ID).First(&chat)
		assert.False(t, chat.IsActive)
	})

	t.Run("Completing twice fails", func(t *testing.T) {
		router := setupTestRouter()
		router.POST("/orders/:id/complete", mockAuthMiddleware(tailor.Auth0ID, tailor.Role, "mock-token"), CompleteOrder)

		w, response := doJSON(t, router, http.MethodPost, completeURL, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assertErrorCode(t, response, "INVALID_STATE")
	})

	t.Run("Completing an accepted order without progress fails", func(t *testing.T) {
		fresh := createTestOrder(t, db, customer.ID)
		db.Model(&fresh).Updates(map[string]interface{}{
			"status":    models.OrderStatusAccepted,
			"tailor_id": tailor.ID,
		})

		router := setupTestRouter()
		router.POST("/orders/:id/complete", mockAuthMiddleware(tailor.Auth0ID, tailor.Role, "mock-token"), CompleteOrder)

		w, response := doJSON(t, router, http.MethodPost, fmt.Sprintf("/orders/%d/complete", fresh.ID), nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assertErrorCode(t, response, "INVALID_STATE")
	})
}

func TestCancelOrder(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	customer := createTestCustomer(t, db, "1")
	otherCustomer := createTestCustomer(t, db, "2")
	tailor := createTestTailor(t, db, "1")

	t.Run("Customer cancels a pending order", func(t *testing.T) {
		order := createTestOrder(t, db, customer.ID)

		router := setupTestRouter()
		router.POST("/orders/:id/cancel", mockAuthMiddleware(customer.Auth0ID, customer.Role, "mock-token"), CancelOrder)

		w, response := doJSON(t, router, http.MethodPost, fmt.Sprintf("/orders/%d/cancel", order.ID), map[string]interface{}{
			"reason": "Changed my mind",
		})
		assert.Equal(t, http.StatusOK, w.Code)

		data := response["data"].(map[string]interface{})
		assert.Equal(t, "cancelled", data["status"])
		assert.Equal(t, "Changed my mind", data["cancel_reason"])
		assert.Equal(t, float64(customer.ID), data["cancelled_by_id"])
	})

	t.Run("Assigned tailor cancels and the chat closes", func(t *testing.T) {
		order := createTestOrder(t, db, customer.ID)
		db.Model(&order).Updates(map[string]interface{}{
			"status":    models.OrderStatusAccepted,
			"tailor_id": tailor.ID,
		})
		db.Create(&models.Chat{
			OrderID:    order.ID,
			CustomerID: customer.ID,
			TailorID:   tailor.ID,
			IsActive:   true,
		})

		router := setupTestRouter()
		router.POST("/orders/:id/cancel", mockAuthMiddleware(tailor.Auth0ID, tailor.Role, "mock-token"), CancelOrder)

		w, _ := doJSON(t, router, http.MethodPost, fmt.Sprintf("/orders/%d/cancel", order.ID), map[string]interface{}{
			"reason": "Out of fabric",
		})
		assert.Equal(t, http.StatusOK, w.Code)

		var chat models.Chat
		db.Where("order_id = ?", order.ID).First(&chat)
		assert.False(t, chat.IsActive)
	})

	t.Run("Unrelated user cannot cancel", func(t *testing.T) {
		order := createTestOrder(t, db, customer.ID)

		router := setupTestRouter()
		router.POST("/orders/:id/cancel", mockAuthMiddleware(otherCustomer.Auth0ID, otherCustomer.Role, "mock-token"), CancelOrder)

		w, response := doJSON(t, router, http.MethodPost, fmt.Sprintf("/orders/%d/cancel", order.ID), map[string]interface{}{
			"reason": "Not mine",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assertErrorCode(t, response, "FORBIDDEN")
	})

	t.Run("Cancelling a completed order fails", func(t *testing.T) {
		order := createTestOrder(t, db, customer.ID)
		db.Model(&order).Updates(map[string]interface{}{
			"status":    models.OrderStatusCompleted,
			"tailor_id": tailor.ID,
		})

		router := setupTestRouter()
		router.POST("/orders/:id/cancel", mockAuthMiddleware(customer.Auth0ID, customer.Role, "mock-token"), CancelOrder)

		w, response := doJSON(t, router, http.MethodPost, fmt.Sprintf("/orders/%d/cancel", order.ID), map[string]interface{}{
			"reason": "Too late",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assertErrorCode(t, response, "INVALID_STATE")
	})
}
