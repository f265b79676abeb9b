package main

import (
	"garden-service/internal/handler"
	"garden-service/internal/middleware"
	"garden-service/pkg/config"
	"garden-service/pkg/database"
	"garden-service/pkg/jwtutil"
	"garden-service/pkg/logger"
	"garden-service/pkg/validate"
	"garden-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting garden service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Initialize Echo framework
	e := echo.New()
	e.Validator = validate.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes
	auth := e.Group("/api/auth")
	auth.POST("/register", handler.Register)
	auth.POST("/login", handler.Login)

	// Quote requests may come from anonymous visitors
	e.POST("/api/quotes", handler.CreateQuoteRequest)

	// Protected auth routes
	authed := e.Group("/api/auth")
	authed.Use(middleware.AuthMiddleware)
	authed.GET("/me", handler.GetMe)
	authed.POST("/logout", handler.Logout)
	authed.PUT("/update-password", handler.ChangePassword)

	// API routes - all require authentication and are scoped to the caller
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)

	// Plant records
	plants := api.Group("/plants")
	plants.GET("", handler.GetAllPlants)
	plants.POST("", handler.CreatePlant)
	plants.GET("/:id", handler.GetPlantByID)
	plants.PUT("/:id", handler.UpdatePlant)
	plants.DELETE("/:id", handler.DeletePlant)
	plants.POST("/:id/notes", handler.AddPlantNote)
	plants.PUT("/:id/care", handler.UpdateCareSchedule)
	plants.POST("/:id/harvest", handler.AddHarvestLog)

	// Task records
	tasks := api.Group("/tasks")
	tasks.GET("", handler.GetAllTasks)
	tasks.POST("", handler.CreateTask)
	tasks.GET("/range", handler.GetTasksByDateRange)
	tasks.GET("/:id", handler.GetTaskByID)
	tasks.PUT("/:id", handler.UpdateTask)
	tasks.DELETE("/:id", handler.DeleteTask)

	// Quote requests owned by the caller
	quotes := api.Group("/quotes")
	quotes.GET("", handler.GetMyQuoteRequests)
	quotes.GET("/:id", handler.GetQuoteRequestByID)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
