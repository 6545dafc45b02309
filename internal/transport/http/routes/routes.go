package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fieldpoint/fieldservice/internal/infra/config"
	"github.com/fieldpoint/fieldservice/internal/transport/http/handlers"
	"github.com/fieldpoint/fieldservice/internal/transport/http/middleware"
	"github.com/fieldpoint/fieldservice/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Authz      *usecase.AuthorizationService
	Users      *usecase.UserService
	Roles      *usecase.RoleService
	WorkOrders *usecase.WorkOrderService
	Schedule   *usecase.ScheduleService
	Timeclock  *usecase.TimeclockService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.HTTPMetrics
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Correlate())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))

	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	r.Use(middleware.CORS(deps.Config.App.CORSAllowedOrigins))

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)
	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	require := func(permission string) gin.HandlerFunc {
		return middleware.RequirePermission(deps.Services.Authz, permission, deps.Metrics)
	}

	api := r.Group("/api/v1")
	{
		meHandler := handlers.NewMeHandler(deps.Services.Users)
		api.GET("/me", require(usecase.PermissionWildcard), meHandler.Profile)
		api.GET("/technicians", require("users:view"), meHandler.ListTechnicians)

		roleHandler := handlers.NewRoleHandler(deps.Services.Roles)
		rolesGroup := api.Group("/roles")
		rolesGroup.GET("", require("roles:view"), roleHandler.ListRoles)
		rolesGroup.GET("/:id", require("roles:view"), roleHandler.GetRole)
		rolesGroup.POST("", require("roles:manage"), roleHandler.CreateRole)
		rolesGroup.PUT("/:id", require("roles:manage"), roleHandler.UpdateRole)
		rolesGroup.DELETE("/:id", require("roles:manage"), roleHandler.DeleteRole)
		rolesGroup.POST("/:id/assignments", require("roles:manage"), roleHandler.AssignRole)
		rolesGroup.DELETE("/:id/assignments/:userId", require("roles:manage"), roleHandler.RevokeRole)

		workOrderHandler := handlers.NewWorkOrderHandler(deps.Services.WorkOrders)
		workOrdersGroup := api.Group("/work-orders")
		workOrdersGroup.GET("", require("work-orders:view"), workOrderHandler.ListWorkOrders)
		workOrdersGroup.GET("/:id", require("work-orders:view"), workOrderHandler.GetWorkOrder)
		workOrdersGroup.POST("", withRateLimit(deps, "work_order_create", require("work-orders:create"), workOrderHandler.CreateWorkOrder)...)
		workOrdersGroup.PATCH("/:id/status", withRateLimit(deps, "work_order_transition", require("work-orders:edit"), workOrderHandler.TransitionStatus)...)

		scheduleHandler := handlers.NewScheduleHandler(deps.Services.Schedule)
		scheduleGroup := api.Group("/schedule")
		scheduleGroup.POST("/drop", withRateLimit(deps, "schedule_drop", require("dispatch:edit"), scheduleHandler.ResolveDrop)...)
		scheduleGroup.GET("/unscheduled", require("dispatch:view"), scheduleHandler.UnscheduledQueue)

		timeclockHandler := handlers.NewTimeclockHandler(deps.Services.Timeclock)
		timeclockGroup := api.Group("/timeclock")
		timeclockGroup.POST("/in", withClockRateLimit(deps, require(usecase.PermissionWildcard), timeclockHandler.ClockIn)...)
		timeclockGroup.POST("/out", withClockRateLimit(deps, require(usecase.PermissionWildcard), timeclockHandler.ClockOut)...)
		timeclockGroup.GET("/active", require(usecase.PermissionWildcard), timeclockHandler.ActiveTimer)

		api.GET("/time-entries", require("timesheets:view"), timeclockHandler.ListTimeEntries)
	}

	return r
}

// withRateLimit wraps handler chains in the tenant mutation rate limit.
func withRateLimit(deps Dependencies, name string, chain ...gin.HandlerFunc) []gin.HandlerFunc {
	rule := mutationRule(deps, name, deps.Config.RateLimit.MutationMaxAttempts)
	if rule == nil {
		return chain
	}
	return append([]gin.HandlerFunc{*rule}, chain...)
}

// withClockRateLimit applies the tighter clock-in/out limit.
func withClockRateLimit(deps Dependencies, chain ...gin.HandlerFunc) []gin.HandlerFunc {
	rule := mutationRule(deps, "timeclock", deps.Config.RateLimit.ClockMaxAttempts)
	if rule == nil {
		return chain
	}
	return append([]gin.HandlerFunc{*rule}, chain...)
}

func mutationRule(deps Dependencies, name string, limit int) *gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil || limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       name,
		Limit:      limit,
		Window:     window,
		Identifier: middleware.UserIdentifier(),
	}

	handler := deps.RateLimiter.RateLimit(rule)
	return &handler
}
