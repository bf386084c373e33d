package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/wearmade/wearmade-api/middleware"
	"github.com/wearmade/wearmade-api/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory database with every model migrated
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.Estimate{},
		&models.ProgressStage{},
		&models.Review{},
		&models.Chat{},
		&models.ChatMessage{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router
}

// mockAuthMiddleware simulates the Auth0 JWT middleware for testing.
// It sets up the context exactly as the real EnsureValidToken middleware does.
func mockAuthMiddleware(auth0ID, role, accessToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", auth0ID)
		c.Set("access_token", accessToken)

		customClaims := &middleware.CustomClaims{
			Role: role,
		}
		mockClaims := &validator.ValidatedClaims{
			CustomClaims: customClaims,
		}
		c.Set("validated_claims", mockClaims)

		c.Next()
	}
}

// createTestCustomer seeds a customer user
func createTestCustomer(t *testing.T, db *gorm.DB, suffix string) models.User {
	user := models.User{
		Auth0ID: "auth0|customer" + suffix,
		Name:    "Customer " + suffix,
		Email:   fmt.Sprintf("customer%s@example.com", suffix),
		Role:    models.RoleCustomer,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test customer: %v", err)
	}
	return user
}

// createTestTailor seeds a tailor user
func createTestTailor(t *testing.T, db *gorm.DB, suffix string) models.User {
	user := models.User{
		Auth0ID: "auth0|tailor" + suffix,
		Name:    "Tailor " + suffix,
		Email:   fmt.Sprintf("tailor%s@example.com", suffix),
		Role:    models.RoleTailor,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test tailor: %v", err)
	}
	return user
}

// createTestOrder seeds a pending order owned by the customer
func createTestOrder(t *testing.T, db *gorm.DB, customerID uint) models.Order {
	order := models.Order{
		Title:       "Navy wool suit",
		Description: "Two-piece suit, slim fit, working cuffs",
		Category:    models.CategorySuit,
		BudgetMin:   300,
		BudgetMax:   800,
		Status:      models.OrderStatusPending,
		CustomerID:  customerID,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("Failed to create test order: %v", err)
	}
	return order
}

// doJSON performs a JSON request against the router and parses the envelope
func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
	}

	req, err := http.NewRequest(method, path, &buf)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Response should be valid JSON: %v (body: %s)", err, w.Body.String())
	}
	return w, response
}

// assertErrorCode checks the error envelope carries the expected stable code
func assertErrorCode(t *testing.T, response map[string]interface{}, code string) {
	t.Helper()
	assert.False(t, response["success"].(bool))
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, code, errorData["code"])
}
