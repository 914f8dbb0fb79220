package router

import (
	"net/http"
	"time"

	"trackify/api"
	"trackify/config"
	"trackify/database"
	_ "trackify/docs"
	"trackify/middleware"
	"trackify/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var startedAt = time.Now()

// SetupRouter wires every route group and returns the engine.
func SetupRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()
	r.Use(CORSMiddleware())

	// Uploaded profile pictures are served as static files.
	r.Static("/uploads", cfg.Server.UploadDir)

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	emailService := service.NewEmailService(&cfg.Email)
	statsCache := service.NewStatsCache(&cfg.Redis)

	authHandler := api.NewAuthHandler(cfg)
	transactionHandler := api.NewTransactionHandler(statsCache)
	categoryHandler := api.NewCategoryHandler()
	contactHandler := api.NewContactHandler(emailService)
	notificationHandler := api.NewNotificationHandler()
	exportHandler := api.NewExportHandler()

	apiGroup := r.Group("/api")
	{
		// Public endpoints, rate-limited.
		auth := apiGroup.Group("/auth")
		{
			auth.POST("/register", middleware.RateLimit(10, time.Minute), authHandler.Register)
			auth.POST("/login", middleware.RateLimit(10, time.Minute), authHandler.Login)
			auth.POST("/upload-profile-pic", authHandler.UploadProfilePic)
		}
		apiGroup.POST("/contact", middleware.RateLimit(5, time.Minute), contactHandler.Submit)

		apiGroup.GET("/health", Health)

		// Everything below requires a bearer token.
		authorized := apiGroup.Group("")
		authorized.Use(middleware.JWTAuth())
		{
			authorized.GET("/auth/me", authHandler.Me)
			authorized.GET("/auth/profile", authHandler.Me)
			authorized.PUT("/auth/profile", authHandler.UpdateProfile)
			authorized.DELETE("/auth/profile-pic", authHandler.DeleteProfilePic)

			transactions := authorized.Group("/transactions")
			{
				transactions.POST("", transactionHandler.Create)
				transactions.GET("", transactionHandler.List)
				transactions.GET("/stats", transactionHandler.Stats)
				transactions.PUT("/:id", transactionHandler.Update)
				transactions.DELETE("/:id", transactionHandler.Delete)
			}

			categories := authorized.Group("/categories")
			{
				categories.GET("", categoryHandler.List)
				categories.POST("", categoryHandler.Create)
				categories.POST("/defaults", categoryHandler.CreateDefaults)
				categories.GET("/:id", categoryHandler.Get)
				categories.PUT("/:id", categoryHandler.Update)
				categories.DELETE("/:id", categoryHandler.Delete)
			}

			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", notificationHandler.List)
				notifications.POST("", notificationHandler.Create)
				notifications.POST("/mark-all-read", notificationHandler.MarkAllRead)
			}

			export := authorized.Group("/export")
			{
				export.GET("/csv", exportHandler.ExportCSV)
				export.GET("/json", exportHandler.ExportJSON)
				export.GET("/excel", exportHandler.ExportExcel)
			}
		}
	}

	return r
}

// Health is the liveness/readiness probe.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/health [get]
func Health(c *gin.Context) {
	dbStatus := "connected"
	if err := database.Ping(); err != nil {
		dbStatus = "disconnected"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(startedAt).Seconds(),
		"database":  dbStatus,
		"mode":      gin.Mode(),
	})
}

// CORSMiddleware allows cross-origin requests from the SPA.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
