package router

import (
	"time"

	"retailpos/internal/config"
	"retailpos/internal/handler"
	"retailpos/internal/middleware"
	"retailpos/internal/model"
	"retailpos/internal/repository"
	"retailpos/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Deps carries the collaborators built by main that the router does not own.
type Deps struct {
	// Events receives order.created / order.refunded after commit. Nil drops them.
	Events service.EventPublisher
	// HealthChecks are probed by /health in addition to the database.
	HealthChecks []handler.HealthCheck
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB
func New(cfg *config.Config, db *gorm.DB, deps Deps) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	if cfg.MetricsEnabled {
		r.Use(middleware.Metrics())
	}
	r.Use(middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute).Middleware())

	// ── Repositories ─────────────────────────────────────────────────────────
	txr := repository.NewTransactor(db)
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	refundRepo := repository.NewRefundRepository(db)
	shiftRepo := repository.NewShiftRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	opts := []service.Option{
		service.WithLocation(loc),
		service.WithSummaryOptions(service.SummaryOptions{
			TopProducts:  cfg.TopProductsLimit,
			RecentOrders: cfg.RecentOrdersLimit,
		}),
	}
	callers := service.NewCallerResolver(userRepo)
	ledger := service.NewInventoryLedger(txr, productRepo, movementRepo)
	orderSvc := service.NewOrderService(txr, callers, productRepo, customerRepo, orderRepo, refundRepo, ledger, deps.Events, opts...)
	shiftSvc := service.NewShiftService(txr, callers, userRepo, shiftRepo, orderRepo, refundRepo, opts...)

	// ── Handlers ─────────────────────────────────────────────────────────────
	ordersH := handler.NewOrdersHandler(orderSvc)
	shiftsH := handler.NewShiftsHandler(shiftSvc, loc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	checks := append([]handler.HealthCheck{handler.DatabaseCheck(db)}, deps.HealthChecks...)
	r.GET("/health", handler.Health(checks...))
	if cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	can := middleware.RequireCapability
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		orders := v1.Group("/orders")
		{
			orders.POST("", can(model.CapSell), ordersH.Create)
			orders.GET("", can(model.CapViewOrders), ordersH.List)
			orders.GET("/recent", can(model.CapViewOrders), ordersH.Recent)
			orders.GET("/today", can(model.CapViewOrders), ordersH.Today)
			orders.GET("/:id", can(model.CapViewOrders), ordersH.Get)
			orders.POST("/:id/refund", can(model.CapRefund), ordersH.Refund)
		}

		v1.GET("/refunds", can(model.CapViewRefunds), ordersH.Refunds)

		shifts := v1.Group("/shifts")
		{
			shifts.POST("/start", can(model.CapRunShift), shiftsH.Start)
			shifts.PATCH("/end", can(model.CapRunShift), shiftsH.End)
			shifts.GET("/current", can(model.CapRunShift), shiftsH.Current)
			shifts.POST("/current/refresh", can(model.CapRunShift), shiftsH.Refresh)
			shifts.GET("/by-date", can(model.CapRunShift, model.CapViewShifts), shiftsH.ByDate)
			shifts.GET("/:id", can(model.CapViewShifts), shiftsH.Get)
			shifts.GET("", can(model.CapViewShifts), shiftsH.List)
		}
	}

	// Swagger UI, outside production only
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, nil
}
