package main

import (
	"fmt"
	"net/http"
	"os"

	"propfolio/internal/config"
	"propfolio/internal/database"
	"propfolio/internal/handlers"
	"propfolio/internal/logger"
	"propfolio/internal/middleware"
	"propfolio/internal/scheduler"
	"propfolio/internal/services"
	"propfolio/internal/validator"
	"propfolio/internal/valuation"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Register custom request validators
	if err := validator.Register(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	propertyService := services.NewPropertyService(db)
	loanService := services.NewLoanService(db, propertyService)
	cashFlowService := services.NewCashFlowService(db, propertyService)
	analyticsService := services.NewAnalyticsService(propertyService)

	var localityProvider valuation.LocalityProvider
	if appConfig.Valuation.LocalityAPIURL != "" {
		localityProvider = valuation.NewHTTPLocalityProvider(
			appConfig.Valuation.LocalityAPIURL, appConfig.Valuation.LocalityTimeout)
	}
	estimator := valuation.NewEstimator(localityProvider, estimatorParams(appConfig.Valuation))
	valuationService := services.NewValuationService(db, propertyService, estimator, appConfig.Valuation)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	propertyHandler := handlers.NewPropertyHandler(propertyService)
	loanHandler := handlers.NewLoanHandler(loanService)
	cashFlowHandler := handlers.NewCashFlowHandler(cashFlowService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	valuationHandler := handlers.NewValuationHandler(valuationService)

	// Daily re-valuation scheduler
	sched := scheduler.New(valuationService, appConfig.Valuation)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start valuation scheduler: %w", err)
	}
	defer sched.Stop()

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)

	// Pipeline routes (machine-to-machine, API-key protected)
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(appConfig.PipelineAPIKey))
	pipeline.POST("/valuation/run", valuationHandler.RunPipelineBatch)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Property routes
	properties := protected.Group("/properties")
	properties.POST("", propertyHandler.CreateProperty)
	properties.GET("", propertyHandler.GetUserProperties)
	properties.GET("/:id", propertyHandler.GetPropertyByID)
	properties.PUT("/:id", propertyHandler.UpdateProperty)
	properties.DELETE("/:id", propertyHandler.DeleteProperty)

	// Loan routes (one loan per property)
	properties.PUT("/:id/loan", loanHandler.UpsertLoan)
	properties.GET("/:id/loan", loanHandler.GetLoan)
	properties.DELETE("/:id/loan", loanHandler.DeleteLoan)

	// Cash-flow routes (one record per property)
	properties.PUT("/:id/cashflow", cashFlowHandler.UpsertCashFlow)
	properties.GET("/:id/cashflow", cashFlowHandler.GetCashFlow)
	properties.DELETE("/:id/cashflow", cashFlowHandler.DeleteCashFlow)

	// Analytics routes
	properties.GET("/:id/analytics", analyticsHandler.GetAssetAnalytics)
	protected.GET("/portfolio/analytics", analyticsHandler.GetPortfolioAnalytics)

	// Valuation routes
	properties.POST("/:id/valuation", valuationHandler.EstimateProperty)
	protected.POST("/valuation/run", valuationHandler.RunOwnerBatch)

	log.Infof("Starting Propfolio backend server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}

// estimatorParams maps the application config onto the estimator's knobs.
func estimatorParams(cfg config.ValuationConfig) valuation.Params {
	params := valuation.DefaultParams()
	params.MinMargin = cfg.MinMargin
	params.MaxMargin = cfg.MaxMargin
	params.ResidentialAppreciation = cfg.ResidentialAppreciation
	params.CommercialAppreciation = cfg.CommercialAppreciation
	params.UnderConstructionFactor = cfg.UnderConstructionFactor
	params.CommercialFactor = cfg.CommercialFactor
	return params
}
