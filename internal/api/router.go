package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/mineralchain/roles-admin/docs"
	"github.com/mineralchain/roles-admin/internal/api/handler"
	"github.com/mineralchain/roles-admin/internal/api/middleware"
	"github.com/mineralchain/roles-admin/internal/core/domain"
	"github.com/mineralchain/roles-admin/internal/core/ports"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Logger      zerolog.Logger
	JWTSecret   string
	AuthService ports.AuthService
	RoleService ports.RoleService
	// Readiness is optional; without it /health/ready only reports the process.
	Readiness *handler.HealthDependenciesHandler
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddleware("roles_http"))

	// --- Health, metrics and docs (no auth required) ---
	readiness := d.Readiness
	if readiness == nil {
		readiness = handler.NewHealthDependenciesHandler()
	}
	e.GET("/health", handler.NewHealthHandler().Liveness) // liveness  – is the process alive?
	e.GET("/health/ready", readiness.Readiness)           // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.AuthService)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Role administration ---
	roles := handler.NewRoleHandler(d.RoleService)
	anyOperator := middleware.RBAC(domain.OperatorAdmin, domain.OperatorViewer)
	chainAdmin := middleware.ChainAdmin(d.RoleService, d.Logger)

	v1 := e.Group("/v1", middleware.Auth(d.JWTSecret))
	v1.GET("/roles/counts", roles.Counts, anyOperator)
	v1.POST("/roles/counts/refresh", roles.RefreshCounts, anyOperator)
	v1.GET("/roles/operations", roles.ListOperations, anyOperator)
	v1.POST("/roles/:role/assign", roles.Assign, middleware.RBAC(domain.OperatorAdmin), chainAdmin)
	v1.POST("/roles/:role/revoke", roles.Revoke, middleware.RBAC(domain.OperatorAdmin), chainAdmin)
	v1.GET("/principals/:identifier/roles", roles.CheckRoles, anyOperator)
	v1.GET("/principals/:identifier/portal", roles.Portal, anyOperator)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
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
