package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	authHTTP "github.com/allisson/authd/internal/auth/http"
	"github.com/allisson/authd/internal/auth/service"
	"github.com/allisson/authd/internal/gateway"
	"github.com/allisson/authd/internal/metrics"
	"github.com/allisson/authd/internal/store"
)

// Server is the public API server: authentication, role and user management
// and activity registration.
type Server struct {
	store  store.HashStore
	router *gin.Engine
	server *http.Server
	logger *slog.Logger
}

// NewServer creates a new API server. Call SetupRouter before Start.
func NewServer(st store.HashStore, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		store:  st,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// RouterConfig carries the handlers and knobs SetupRouter wires together.
type RouterConfig struct {
	Tokens      service.TokenService
	Gateway     *gateway.Gateway
	AuthHandler *authHTTP.AuthHandler
	RoleHandler *authHTTP.RoleHandler
	UserHandler *authHTTP.UserHandler

	// MeterProvider enables HTTP metrics when non-nil.
	MeterProvider    metric.MeterProvider
	MetricsNamespace string

	CORSEnabled      bool
	CORSAllowOrigins string

	// Per-IP rate limit for the authenticate endpoint.
	AuthenticateRPS   float64
	AuthenticateBurst int
}

// SetupRouter builds the route table. The activity labels the routes require
// are declared on the gateway here; the caller must run
// Gateway.RegisterActivities afterwards, before serving traffic.
func (s *Server) SetupRouter(cfg RouterConfig) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}
	if cfg.MeterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(cfg.MeterProvider, cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	auth := router.Group("/auth")

	// Unauthenticated surface. Downstream services sync their activity labels
	// before they hold any token, so registration is open like authentication.
	if cfg.AuthenticateRPS > 0 {
		auth.POST("/authenticate/",
			authHTTP.AuthRateLimitMiddleware(cfg.AuthenticateRPS, cfg.AuthenticateBurst, s.logger),
			cfg.AuthHandler.AuthenticateHandler,
		)
	} else {
		auth.POST("/authenticate/", cfg.AuthHandler.AuthenticateHandler)
	}
	auth.PATCH("/activities/", cfg.AuthHandler.RegisterActivitiesHandler)

	g := cfg.Gateway
	claims := gateway.ClaimsMiddleware(cfg.Tokens, s.logger)
	view := g.RequireActivity("view_users", s.logger)
	manage := g.RequireActivity("manage_users", s.logger)
	selfOrView := g.RequireFunc(func(c *gin.Context) gateway.Requirement {
		username := c.Param("user")
		return gateway.Predicate(func(can gateway.Can) (bool, error) {
			requester, ok := gateway.ClaimsFrom(c.Request.Context())
			if !ok {
				return false, nil
			}
			return requester.Username == username || can("view_users"), nil
		})
	}, s.logger)

	roles := auth.Group("/roles", claims)
	roles.GET("", view, cfg.RoleHandler.ListHandler)
	roles.GET("/:role/", view, cfg.RoleHandler.GetHandler)
	roles.POST("/:role/", manage, cfg.RoleHandler.CreateHandler)
	roles.PUT("/:role/", manage, cfg.RoleHandler.UpdateHandler)
	roles.PATCH("/:role/", manage, cfg.RoleHandler.UpdateHandler)
	roles.DELETE("/:role/", manage, cfg.RoleHandler.DeleteHandler)
	roles.POST("/:role/activities/", manage, cfg.RoleHandler.ReplaceActivitiesHandler)
	roles.PATCH("/:role/activities/", manage, cfg.RoleHandler.AddActivitiesHandler)

	users := auth.Group("/users", claims)
	users.GET("", view, cfg.UserHandler.ListHandler)
	users.GET("/:user/", selfOrView, cfg.UserHandler.GetHandler)
	users.POST("/:user/", manage, cfg.UserHandler.CreateHandler)
	users.PUT("/:user/", manage, cfg.UserHandler.UpdateHandler)
	users.PATCH("/:user/", manage, cfg.UserHandler.UpdateHandler)
	users.DELETE("/:user/", manage, cfg.UserHandler.DeleteHandler)
	users.POST("/:user/roles/", manage, cfg.UserHandler.ReplaceRolesHandler)
	users.PATCH("/:user/roles/", manage, cfg.UserHandler.AddRoleHandler)
	users.GET("/:user/activities/", selfOrView, cfg.UserHandler.GetActivitiesHandler)

	s.router = router
}

// Router returns the configured router. Exposed for handler tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the API server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler answers liveness probes.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler answers readiness probes by pinging the store.
func (s *Server) readinessHandler(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"store": "error"},
		})
		return
	}

	if err := s.store.Ping(c.Request.Context()); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"store": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"store": "ok"},
	})
}
