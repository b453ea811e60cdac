package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// NewRouter builds the engine with middleware and every route mounted.
func NewRouter(h *Handler, log zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Recovery(log), Logger(log), CORS())

	r.GET("/health", h.Health)
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	protected := r.Group("/api", h.AuthMiddleware())

	transactions := protected.Group("/transactions")
	transactions.POST("", h.CreateTransaction)
	transactions.GET("", h.GetTransactions)
	transactions.GET("/categories", h.GetCategories)
	transactions.GET("/carbon-summary", h.GetCarbonSummary)

	user := protected.Group("/user")
	user.GET("/profile", h.GetProfile)
	user.PUT("/profile", h.UpdateProfile)

	stats := protected.Group("/analytics")
	stats.GET("/summary", h.GetAnalyticsSummary)
	stats.GET("/timeseries", h.GetTimeSeries)
	stats.GET("/by-category", h.GetCategoryBreakdown)
	stats.GET("/top-merchants", h.GetTopMerchants)
	stats.GET("/transactions", h.GetFilteredTransactions)
	stats.GET("/transactions/export", h.ExportTransactions)
	stats.GET("/insights", h.GetInsights)

	return r
}
