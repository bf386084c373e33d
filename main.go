package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/wearmade/wearmade-api/config"
	"github.com/wearmade/wearmade-api/controllers"
	"github.com/wearmade/wearmade-api/middleware"
	"github.com/wearmade/wearmade-api/models"
	"github.com/wearmade/wearmade-api/services"
)

func main() {
	log.Println("Starting WearMade API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.Estimate{},
		&models.ProgressStage{},
		&models.Review{},
		&models.Chat{},
		&models.ChatMessage{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Image storage is optional in development
	if cfg.AWSS3Bucket != "" {
		if _, err := services.InitS3Service(); err != nil {
			log.Printf("S3 service unavailable, uploads disabled: %v", err)
		}
	}

	// Email notifications fall back to the log when SMTP is not configured
	if notifier, err := services.NewSMTPNotifier(cfg); err != nil {
		log.Printf("SMTP not configured, notifications go to the log: %v", err)
	} else {
		services.SetNotifier(notifier)
	}

	router := setupRouter(cfg)

	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter builds the gin engine with CORS, auth middleware and all routes
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authRequired := middleware.EnsureValidToken(cfg)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)

		// User profiles
		v1.POST("/users", authRequired, controllers.CreateUser)
		v1.GET("/users/me", authRequired, controllers.GetCurrentUser)
		v1.PUT("/users/me", authRequired, controllers.UpdateCurrentUser)

		// Order lifecycle
		v1.POST("/orders", authRequired, controllers.CreateOrder)
		v1.GET("/orders", authRequired, controllers.ListOrders)
		v1.GET("/orders/:id", authRequired, controllers.GetOrder)
		v1.DELETE("/orders/:id", authRequired, controllers.DeleteOrder)
		v1.POST("/orders/:id/estimate", authRequired, controllers.SubmitEstimate)
		v1.POST("/orders/:id/accept-estimate", authRequired, controllers.AcceptEstimate)
		v1.POST("/orders/:id/progress", authRequired, controllers.UpdateProgress)
		v1.POST("/orders/:id/complete", authRequired, controllers.CompleteOrder)
		v1.POST("/orders/:id/cancel", authRequired, controllers.CancelOrder)
		v1.POST("/orders/:id/review", authRequired, controllers.AddReview)

		// Chat
		v1.POST("/chat", authRequired, controllers.CreateOrGetChat)
		v1.GET("/chat", authRequired, controllers.ListChats)
		v1.GET("/chat/unread-count", authRequired, controllers.GetUnreadCount)
		v1.GET("/chat/order/:orderId", authRequired, controllers.GetChatByOrder)
		v1.POST("/chat/:chatId/message", authRequired, controllers.SendChatMessage)
		v1.PUT("/chat/:chatId/read", authRequired, controllers.MarkChatRead)

		// Real-time chat delivery
		v1.GET("/ws", authRequired, controllers.ChatSocket)

		// Image pre-upload
		v1.POST("/uploads", authRequired, controllers.UploadImage)
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "WearMade API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
