package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"propfolio/internal/config"
	"propfolio/internal/handlers"
	"propfolio/internal/logger"
	"propfolio/internal/middleware"
	"propfolio/internal/models"
	"propfolio/internal/services"
	"propfolio/internal/validator"
	"propfolio/internal/valuation"
)

// pipelineKey protects the machine-to-machine batch route in tests.
const pipelineKey = "integration-pipeline-key"

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	if err := validator.Register(); err != nil {
		panic(err)
	}
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get underlying DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	allModels := []interface{}{
		&models.User{},
		&models.Property{},
		&models.Loan{},
		&models.CashFlow{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	valuationCfg := config.ValuationConfig{
		StaleDays:   30,
		Concurrency: 5,
		BatchDelay:  0,
	}

	// Services
	userService := services.NewUserService(db)
	propertyService := services.NewPropertyService(db)
	loanService := services.NewLoanService(db, propertyService)
	cashFlowService := services.NewCashFlowService(db, propertyService)
	analyticsService := services.NewAnalyticsService(propertyService)
	estimator := valuation.NewEstimator(nil, valuation.DefaultParams())
	valuationService := services.NewValuationService(db, propertyService, estimator, valuationCfg)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	propertyHandler := handlers.NewPropertyHandler(propertyService)
	loanHandler := handlers.NewLoanHandler(loanService)
	cashFlowHandler := handlers.NewCashFlowHandler(cashFlowService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	valuationHandler := handlers.NewValuationHandler(valuationService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)

	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(pipelineKey))
	pipeline.POST("/valuation/run", valuationHandler.RunPipelineBatch)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	properties := protected.Group("/properties")
	properties.POST("", propertyHandler.CreateProperty)
	properties.GET("", propertyHandler.GetUserProperties)
	properties.GET("/:id", propertyHandler.GetPropertyByID)
	properties.PUT("/:id", propertyHandler.UpdateProperty)
	properties.DELETE("/:id", propertyHandler.DeleteProperty)

	properties.PUT("/:id/loan", loanHandler.UpsertLoan)
	properties.GET("/:id/loan", loanHandler.GetLoan)
	properties.DELETE("/:id/loan", loanHandler.DeleteLoan)

	properties.PUT("/:id/cashflow", cashFlowHandler.UpsertCashFlow)
	properties.GET("/:id/cashflow", cashFlowHandler.GetCashFlow)
	properties.DELETE("/:id/cashflow", cashFlowHandler.DeleteCashFlow)

	properties.GET("/:id/analytics", analyticsHandler.GetAssetAnalytics)
	protected.GET("/portfolio/analytics", analyticsHandler.GetPortfolioAnalytics)

	properties.POST("/:id/valuation", valuationHandler.EstimateProperty)
	protected.POST("/valuation/run", valuationHandler.RunOwnerBatch)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// pipelineRequest makes a request carrying the pipeline API key.
func (app *testApp) pipelineRequest(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", pipelineKey)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken string, userID float64) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(float64)
}

// createProperty creates a property through the API and returns its ID.
func (app *testApp) createProperty(t *testing.T, token, body string) float64 {
	t.Helper()
	rec := app.request("POST", "/api/v1/properties", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create property failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["id"].(float64)
}
