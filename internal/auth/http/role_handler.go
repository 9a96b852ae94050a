package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/allisson/authd/internal/auth/http/dto"
	"github.com/allisson/authd/internal/auth/usecase"
	"github.com/allisson/authd/internal/httputil"
)

// RoleHandler handles role management requests.
type RoleHandler struct {
	authUseCase usecase.AuthUseCase
	logger      *slog.Logger
}

// NewRoleHandler creates a new role handler.
func NewRoleHandler(authUseCase usecase.AuthUseCase, logger *slog.Logger) *RoleHandler {
	return &RoleHandler{
		authUseCase: authUseCase,
		logger:      logger,
	}
}

// ListHandler lists roles with pagination.
// GET /auth/roles?offset=0&limit=50 - Requires view_users.
// Returns 200 with the page and an X-total-count header carrying the full count.
func (h *RoleHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	roles, err := h.authUseCase.GetRoles(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	total := len(roles)
	roles = page(roles, offset, limit)

	c.Header("X-total-count", strconv.Itoa(total))
	c.JSON(http.StatusOK, dto.MapRolesToResponse(roles))
}

// GetHandler retrieves a single role.
// GET /auth/roles/:role/ - Requires view_users.
func (h *RoleHandler) GetHandler(c *gin.Context) {
	role, err := h.authUseCase.GetRole(c.Request.Context(), c.Param("role"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRoleToResponse(role))
}

// CreateHandler creates a role with an optional activity set.
// POST /auth/roles/:role/ - Requires manage_users. Returns 204.
func (h *RoleHandler) CreateHandler(c *gin.Context) {
	req, ok := h.bindActivities(c)
	if !ok {
		return
	}

	if err := h.authUseCase.AddRole(c.Request.Context(), c.Param("role"), req.Activities); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// UpdateHandler replaces a role's activity set.
// PUT/PATCH /auth/roles/:role/ - Requires manage_users. Returns 204.
func (h *RoleHandler) UpdateHandler(c *gin.Context) {
	req, ok := h.bindActivities(c)
	if !ok {
		return
	}

	if err := h.authUseCase.UpdateRole(c.Request.Context(), c.Param("role"), req.Activities); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// DeleteHandler removes a role and every reference to it.
// DELETE /auth/roles/:role/ - Requires manage_users. Returns 204.
func (h *RoleHandler) DeleteHandler(c *gin.Context) {
	if err := h.authUseCase.RemoveRole(c.Request.Context(), c.Param("role"), false); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// ReplaceActivitiesHandler replaces a role's activity set.
// POST /auth/roles/:role/activities/ - Requires manage_users. Returns 204.
func (h *RoleHandler) ReplaceActivitiesHandler(c *gin.Context) {
	h.UpdateHandler(c)
}

// AddActivitiesHandler adds activities to a role without touching existing ones.
// PATCH /auth/roles/:role/activities/ - Requires manage_users. Returns 204.
func (h *RoleHandler) AddActivitiesHandler(c *gin.Context) {
	req, ok := h.bindActivities(c)
	if !ok {
		return
	}

	if err := h.authUseCase.AddRoleActivities(c.Request.Context(), c.Param("role"), req.Activities...); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// bindActivities parses and validates the shared activities request body.
func (h *RoleHandler) bindActivities(c *gin.Context) (dto.RoleActivitiesRequest, bool) {
	var req dto.RoleActivitiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return req, false
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return req, false
	}
	return req, true
}

// page clips a full result set to the requested window.
func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
