package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/almlcv/sharanga-backend-sub001/internal/domain/models"
	"github.com/almlcv/sharanga-backend-sub001/internal/server/handlers"
	"github.com/almlcv/sharanga-backend-sub001/internal/server/middleware"
)

// Handlers groups the HTTP adapters mounted by the router.
type Handlers struct {
	Hourly  *handlers.HourlyHandler
	Stock   *handlers.StockHandler
	Plans   *handlers.PlanHandler
	Reports *handlers.ReportHandler
	Health  *handlers.HealthHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, jwtSecret string, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	r.GET("/healthz", h.Health.Healthz)

	api := r.Group("/api/v1")
	api.Use(middleware.JWTAuth(jwtSecret))

	hourly := api.Group("/production/hourly")
	{
		hourly.POST("/init", h.Hourly.Initialize)
		hourly.POST("/entries", h.Hourly.SubmitEntries)
		hourly.POST("/review", h.Hourly.ReviewStatus)
		hourly.POST("/sign", h.Hourly.Sign)
		hourly.PATCH("/details",
			middleware.RequireRoles(models.RoleAdmin, models.RoleProduction, models.RoleProductionHead, models.RoleOperator),
			h.Hourly.UpdateDetails)
		hourly.GET("", h.Hourly.List)
		hourly.GET("/pending", h.Hourly.PendingApproval)
		hourly.GET("/:id", h.Hourly.Get)
		hourly.POST("/:id/finalize", h.Hourly.Finalize)
	}

	stock := api.Group("/fgstock")
	{
		stock.GET("", h.Stock.Get)
		stock.GET("/daily", h.Stock.Daily)
		stock.GET("/monthly", h.Stock.Monthly)
		stock.POST("/inspection", h.Stock.Inspection)
		stock.POST("/dispatch", h.Stock.Dispatch)
	}

	plan := api.Group("/production/plan")
	{
		plan.POST("", h.Plans.Upsert)
		plan.GET("", h.Plans.List)
		plan.GET("/daily", h.Plans.Daily)
	}

	reports := api.Group("/production/report")
	reports.Use(middleware.RequireRoles(models.RoleAdmin, models.RoleProduction, models.RoleProductionHead, models.RoleViewer))
	{
		reports.GET("/daily", h.Reports.Daily)
		reports.GET("/monthly", h.Reports.Monthly)
		reports.GET("/plan", h.Reports.Plan)
	}

	logger.Info("router initialized")
	return r
}
