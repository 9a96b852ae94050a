package gateway

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/allisson/authd/internal/auth/domain"
	"github.com/allisson/authd/internal/auth/service"
	apperrors "github.com/allisson/authd/internal/errors"
	"github.com/allisson/authd/internal/httputil"
)

type claimsContextKey struct{}

// WithClaims returns a context carrying the verified claims.
func WithClaims(ctx context.Context, claims *domain.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// ClaimsFrom retrieves the verified claims stored by ClaimsMiddleware.
func ClaimsFrom(ctx context.Context) (*domain.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*domain.Claims)
	return claims, ok
}

// ClaimsMiddleware extracts the Bearer token from the Authorization header
// (case-insensitive), verifies it and stores the claims in the request
// context. Missing, malformed and invalid tokens all answer 401.
func ClaimsMiddleware(tokens service.TokenService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		token := authHeader[len(bearerPrefix):]
		if token == "" {
			logger.Debug("authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		claims, err := tokens.Verify(token)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

// RequireActivity returns a middleware enforcing the given activity. The
// label is declared for the gateway's next RegisterActivities call. Must run
// after ClaimsMiddleware.
func (g *Gateway) RequireActivity(label string, logger *slog.Logger) gin.HandlerFunc {
	g.Declare(label)
	return g.Require(Activity(label), logger)
}

// RequireFunc returns a middleware that builds the requirement per request,
// for requirements that depend on path parameters. Labels the built
// requirements test must be passed to Declare separately.
func (g *Gateway) RequireFunc(build func(c *gin.Context) Requirement, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		g.Require(build(c), logger)(c)
	}
}

// Require returns a middleware enforcing the given requirement. Must run
// after ClaimsMiddleware. Predicate requirements only see the labels already
// passed to Declare.
func (g *Gateway) Require(req Requirement, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c.Request.Context())
		if !ok || claims == nil {
			logger.Debug("authorization failed: no verified claims in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if err := g.Decide(c.Request.Context(), claims, req); err != nil {
			logger.Debug("authorization failed",
				slog.String("username", claims.Username),
				slog.String("error", err.Error()),
			)
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
