// Package http provides HTTP handlers for the authorization service:
// authentication, role and user management, and activity registration.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/authd/internal/auth/http/dto"
	"github.com/allisson/authd/internal/auth/usecase"
	apperrors "github.com/allisson/authd/internal/errors"
	"github.com/allisson/authd/internal/httputil"
)

// AuthHandler handles authentication and activity registration requests.
type AuthHandler struct {
	authUseCase usecase.AuthUseCase
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authUseCase usecase.AuthUseCase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
		logger:      logger,
	}
}

// AuthenticateHandler verifies credentials and issues a token.
// POST /auth/authenticate/ - No authentication required, rate limited per IP.
// Returns 200 with {user} on success. Bad credentials also answer 200, with
// an {error} body instead, which is what login forms consume.
func (h *AuthHandler) AuthenticateHandler(c *gin.Context) {
	var req dto.AuthenticateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	user, err := h.authUseCase.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUnauthorized) || apperrors.Is(err, apperrors.ErrNotFound) {
			h.logger.Info("authentication rejected", slog.String("username", req.Username))
			c.JSON(http.StatusOK, dto.AuthenticateErrorResponse{Error: "wrong username or password"})
			return
		}
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.AuthenticateResponse{User: dto.MapUserToResponse(user)})
}

// RegisterActivitiesHandler assigns indices to the given activity labels.
// PATCH /auth/activities/ - Served to downstream gateways syncing their
// requirement labels. Returns 200 with the label-to-index sub-map.
func (h *AuthHandler) RegisterActivitiesHandler(c *gin.Context) {
	var req dto.RegisterActivitiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.authUseCase.RegisterActivities(c.Request.Context(), req.Activities); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, h.authUseCase.ActivityIndexMap(req.Activities...))
}
