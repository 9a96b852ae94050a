// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/allisson/authd/internal/activity"
	authHTTP "github.com/allisson/authd/internal/auth/http"
	authRepository "github.com/allisson/authd/internal/auth/repository"
	authService "github.com/allisson/authd/internal/auth/service"
	authUseCase "github.com/allisson/authd/internal/auth/usecase"
	"github.com/allisson/authd/internal/config"
	"github.com/allisson/authd/internal/gateway"
	"github.com/allisson/authd/internal/http"
	"github.com/allisson/authd/internal/metrics"
	"github.com/allisson/authd/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger        *slog.Logger
	store         store.HashStore
	activityIndex *activity.Index

	// Services and repositories
	tokenService    authService.TokenService
	graphRepository authUseCase.GraphRepository

	// Use cases
	authUseCase authUseCase.AuthUseCase

	// Gateway
	gateway *gateway.Gateway

	// Handlers
	authHandler *authHTTP.AuthHandler
	roleHandler *authHTTP.RoleHandler
	userHandler *authHTTP.UserHandler

	// Metrics
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	storeInit           sync.Once
	activityIndexInit   sync.Once
	tokenServiceInit    sync.Once
	graphRepositoryInit sync.Once
	authUseCaseInit     sync.Once
	gatewayInit         sync.Once
	authHandlerInit     sync.Once
	roleHandlerInit     sync.Once
	userHandlerInit     sync.Once
	metricsProviderInit sync.Once
	businessMetricsInit sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// Store returns the hash store connection.
// It connects to Redis with the configured retry budget on first access.
func (c *Container) Store() (store.HashStore, error) {
	var err error
	c.storeInit.Do(func() {
		c.store, err = c.initStore()
		if err != nil {
			c.initErrors["store"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["store"]; exists {
		return nil, storedErr
	}
	return c.store, nil
}

// ActivityIndex returns the loaded activity index.
func (c *Container) ActivityIndex() (*activity.Index, error) {
	var err error
	c.activityIndexInit.Do(func() {
		c.activityIndex, err = c.initActivityIndex()
		if err != nil {
			c.initErrors["activityIndex"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["activityIndex"]; exists {
		return nil, storedErr
	}
	return c.activityIndex, nil
}

// TokenService returns the token signing service.
func (c *Container) TokenService() (authService.TokenService, error) {
	var err error
	c.tokenServiceInit.Do(func() {
		c.tokenService, err = c.initTokenService()
		if err != nil {
			c.initErrors["tokenService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenService"]; exists {
		return nil, storedErr
	}
	return c.tokenService, nil
}

// GraphRepository returns the authorization graph repository.
func (c *Container) GraphRepository() (authUseCase.GraphRepository, error) {
	var err error
	c.graphRepositoryInit.Do(func() {
		c.graphRepository, err = c.initGraphRepository()
		if err != nil {
			c.initErrors["graphRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["graphRepository"]; exists {
		return nil, storedErr
	}
	return c.graphRepository, nil
}

// AuthUseCase returns the authorization core.
func (c *Container) AuthUseCase() (authUseCase.AuthUseCase, error) {
	var err error
	c.authUseCaseInit.Do(func() {
		c.authUseCase, err = c.initAuthUseCase()
		if err != nil {
			c.initErrors["authUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authUseCase"]; exists {
		return nil, storedErr
	}
	return c.authUseCase, nil
}

// Gateway returns the request authorization gateway backed by the local core.
func (c *Container) Gateway() (*gateway.Gateway, error) {
	var err error
	c.gatewayInit.Do(func() {
		c.gateway, err = c.initGateway()
		if err != nil {
			c.initErrors["gateway"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["gateway"]; exists {
		return nil, storedErr
	}
	return c.gateway, nil
}

// AuthHandler returns the HTTP handler for authentication and activity registration.
func (c *Container) AuthHandler() (*authHTTP.AuthHandler, error) {
	var err error
	c.authHandlerInit.Do(func() {
		c.authHandler, err = c.initAuthHandler()
		if err != nil {
			c.initErrors["authHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authHandler"]; exists {
		return nil, storedErr
	}
	return c.authHandler, nil
}

// RoleHandler returns the HTTP handler for role management.
func (c *Container) RoleHandler() (*authHTTP.RoleHandler, error) {
	var err error
	c.roleHandlerInit.Do(func() {
		c.roleHandler, err = c.initRoleHandler()
		if err != nil {
			c.initErrors["roleHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["roleHandler"]; exists {
		return nil, storedErr
	}
	return c.roleHandler, nil
}

// UserHandler returns the HTTP handler for user management.
func (c *Container) UserHandler() (*authHTTP.UserHandler, error) {
	var err error
	c.userHandlerInit.Do(func() {
		c.userHandler, err = c.initUserHandler()
		if err != nil {
			c.initErrors["userHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["userHandler"]; exists {
		return nil, storedErr
	}
	return c.userHandler, nil
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		c.metricsProvider, err = metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder.
// A no-op recorder is returned when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// HTTPServer returns the API server with the route table configured.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server instance, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	// Shutdown HTTP server if initialized
	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	// Shutdown metrics server if initialized
	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	// Shutdown metrics provider if initialized
	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	// Close store connection if initialized
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("store close: %w", err))
		}
	}

	// Return combined errors if any occurred
	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initStore connects to the Redis store with the configured retry budget.
func (c *Container) initStore() (store.HashStore, error) {
	st, err := store.Connect(context.Background(), store.Config{
		Addr:            c.config.RedisAddr,
		DB:              c.config.RedisDB,
		ConnectAttempts: c.config.RedisConnectAttempts,
		ConnectBackoff:  c.config.RedisConnectBackoff,
	}, c.Logger())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to store: %w", err)
	}
	return st, nil
}

// initActivityIndex creates the activity index and loads the persisted map.
func (c *Container) initActivityIndex() (*activity.Index, error) {
	st, err := c.Store()
	if err != nil {
		return nil, fmt.Errorf("failed to get store for activity index: %w", err)
	}

	index := activity.NewIndex(st)
	if err := index.Load(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to load activity index: %w", err)
	}
	return index, nil
}

// initTokenService creates the token signing service.
func (c *Container) initTokenService() (authService.TokenService, error) {
	if c.config.TokenSecret == "" {
		return nil, fmt.Errorf("TOKEN_SECRET must be set")
	}
	return authService.NewTokenService(c.config.TokenSecret, c.config.TokenExpiration), nil
}

// initGraphRepository creates the authorization graph repository.
func (c *Container) initGraphRepository() (authUseCase.GraphRepository, error) {
	st, err := c.Store()
	if err != nil {
		return nil, fmt.Errorf("failed to get store for graph repository: %w", err)
	}
	return authRepository.NewRedisGraphRepository(st), nil
}

// initAuthUseCase creates the authorization core with all its dependencies.
func (c *Container) initAuthUseCase() (authUseCase.AuthUseCase, error) {
	st, err := c.Store()
	if err != nil {
		return nil, fmt.Errorf("failed to get store for auth use case: %w", err)
	}

	repo, err := c.GraphRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get graph repository for auth use case: %w", err)
	}

	index, err := c.ActivityIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to get activity index for auth use case: %w", err)
	}

	tokens, err := c.TokenService()
	if err != nil {
		return nil, fmt.Errorf("failed to get token service for auth use case: %w", err)
	}

	useCase, err := authUseCase.NewAuthUseCase(repo, index, tokens, st, c.Logger())
	if err != nil {
		return nil, fmt.Errorf("failed to create auth use case: %w", err)
	}

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for auth use case: %w", err)
		}
		useCase = authUseCase.NewAuthUseCaseWithMetrics(useCase, businessMetrics)
	}

	return useCase, nil
}

// initGateway creates the authorization gateway backed by the local core.
func (c *Container) initGateway() (*gateway.Gateway, error) {
	core, err := c.AuthUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth use case for gateway: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for gateway: %w", err)
	}

	return gateway.New(gateway.NewLocalRegistrar(core), businessMetrics, c.Logger()), nil
}

// initAuthHandler creates the authentication HTTP handler.
func (c *Container) initAuthHandler() (*authHTTP.AuthHandler, error) {
	core, err := c.AuthUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth use case for auth handler: %w", err)
	}
	return authHTTP.NewAuthHandler(core, c.Logger()), nil
}

// initRoleHandler creates the role management HTTP handler.
func (c *Container) initRoleHandler() (*authHTTP.RoleHandler, error) {
	core, err := c.AuthUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth use case for role handler: %w", err)
	}
	return authHTTP.NewRoleHandler(core, c.Logger()), nil
}

// initUserHandler creates the user management HTTP handler.
func (c *Container) initUserHandler() (*authHTTP.UserHandler, error) {
	core, err := c.AuthUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth use case for user handler: %w", err)
	}
	return authHTTP.NewUserHandler(core, c.Logger()), nil
}

// initBusinessMetrics creates the business metrics recorder.
func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	if !c.config.MetricsEnabled {
		return metrics.NewNoOpBusinessMetrics(), nil
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for business metrics: %w", err)
	}

	return metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
}

// initHTTPServer creates the API server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	st, err := c.Store()
	if err != nil {
		return nil, fmt.Errorf("failed to get store for http server: %w", err)
	}

	tokens, err := c.TokenService()
	if err != nil {
		return nil, fmt.Errorf("failed to get token service for http server: %w", err)
	}

	g, err := c.Gateway()
	if err != nil {
		return nil, fmt.Errorf("failed to get gateway for http server: %w", err)
	}

	authHandler, err := c.AuthHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth handler for http server: %w", err)
	}

	roleHandler, err := c.RoleHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get role handler for http server: %w", err)
	}

	userHandler, err := c.UserHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get user handler for http server: %w", err)
	}

	routerConfig := http.RouterConfig{
		Tokens:            tokens,
		Gateway:           g,
		AuthHandler:       authHandler,
		RoleHandler:       roleHandler,
		UserHandler:       userHandler,
		CORSEnabled:       c.config.CORSEnabled,
		CORSAllowOrigins:  c.config.CORSAllowOrigins,
		AuthenticateRPS:   c.config.RateLimitAuthRequestsPerSec,
		AuthenticateBurst: c.config.RateLimitAuthBurst,
	}
	if !c.config.RateLimitAuthEnabled {
		// A zero rate disables the limiter middleware.
		routerConfig.AuthenticateRPS = 0
	}

	if c.config.MetricsEnabled {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
		}
		routerConfig.MeterProvider = provider.MeterProvider()
		routerConfig.MetricsNamespace = c.config.MetricsNamespace
	}

	server := http.NewServer(st, c.config.ServerHost, c.config.ServerPort, c.Logger())
	server.SetupRouter(routerConfig)

	return server, nil
}

// initMetricsServer creates the metrics server with the metrics provider.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}

	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
}
