package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/ledgerly/budget-api/docs"
	"github.com/ledgerly/budget-api/internal/api/handler"
	"github.com/ledgerly/budget-api/internal/api/middleware"
	"github.com/ledgerly/budget-api/internal/core/ports"
)

// Dependencies are the services the HTTP layer is built from.
type Dependencies struct {
	Auth         ports.AuthService
	Tokens       ports.TokenService
	Budgets      ports.BudgetService
	Transactions ports.TransactionService
	HealthChecks map[string]handler.HealthCheck
	Log          zerolog.Logger

	// Metrics default to the global Prometheus registry.
	MetricsRegisterer prometheus.Registerer
	MetricsGatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	registerer, gatherer := deps.MetricsRegisterer, deps.MetricsGatherer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "budget_api",
		Registerer: registerer,
	}))

	authenticated := []echo.MiddlewareFunc{middleware.Authenticate(deps.Tokens), middleware.RequireAuth()}

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	e.POST("/auth/signup", authHandler.Signup)
	e.POST("/auth/login", authHandler.Login)
	e.GET("/auth/verify", authHandler.Verify, authenticated...)

	// --- Budgets and transactions ---
	budgetHandler := handler.NewBudgetHandler(deps.Budgets)
	transactionHandler := handler.NewTransactionHandler(deps.Transactions)
	for _, prefix := range []string{"/api", ""} {
		g := e.Group(prefix)
		g.POST("/budgets", budgetHandler.Create, authenticated...)
		g.GET("/budgets", budgetHandler.List, authenticated...)
		g.GET("/budgets/:budgetId", budgetHandler.Get, authenticated...)
		g.PUT("/budgets/:budgetId", budgetHandler.Update, authenticated...)
		g.DELETE("/budgets/:budgetId", budgetHandler.Delete, authenticated...)

		g.POST("/budgets/:budgetId/transactions", transactionHandler.Create, authenticated...)
		g.GET("/budgets/:budgetId/transactions", transactionHandler.List, authenticated...)
		g.GET("/budgets/:budgetId/transactions/:transactionId", transactionHandler.Get, authenticated...)
		g.PUT("/budgets/:budgetId/transactions/:transactionId", transactionHandler.Update, authenticated...)
		g.DELETE("/budgets/:budgetId/transactions/:transactionId", transactionHandler.Delete, authenticated...)
	}

	// --- Health checks, metrics and docs (no auth required) ---
	healthHandler := handler.NewHealthHandler(deps.HealthChecks)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger emits one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
