package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/allisson/authd/internal/auth/domain"
	"github.com/allisson/authd/internal/auth/http/dto"
	"github.com/allisson/authd/internal/auth/usecase"
	apperrors "github.com/allisson/authd/internal/errors"
	"github.com/allisson/authd/internal/gateway"
	"github.com/allisson/authd/internal/httputil"
)

// UserHandler handles user management requests.
type UserHandler struct {
	authUseCase usecase.AuthUseCase
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(authUseCase usecase.AuthUseCase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		authUseCase: authUseCase,
		logger:      logger,
	}
}

// ListHandler lists users with pagination.
// GET /auth/users?offset=0&limit=50 - Requires view_users.
// Returns 200 with the page and an X-total-count header carrying the full count.
func (h *UserHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	users, err := h.authUseCase.GetUsers(c.Request.Context(), false)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	total := len(users)
	users = page(users, offset, limit)

	c.Header("X-total-count", strconv.Itoa(total))
	c.JSON(http.StatusOK, dto.MapUsersToResponse(users))
}

// GetHandler retrieves a single user with its derived activities.
// GET /auth/users/:user/ - Requires view_users, or being that user.
func (h *UserHandler) GetHandler(c *gin.Context) {
	user, err := h.authUseCase.GetUser(c.Request.Context(), c.Param("user"), true)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUserToResponse(user))
}

// CreateHandler creates a user.
// POST /auth/users/:user/ - Requires manage_users. Returns 204.
// Unknown roles in the request are rejected with 409 before any write.
func (h *UserHandler) CreateHandler(c *gin.Context) {
	var req dto.AddUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	err := h.authUseCase.AddUser(c.Request.Context(), c.Param("user"), req.Password, req.Roles, req.IsRoot)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// UpdateHandler applies a partial user update.
// PUT/PATCH /auth/users/:user/ - Requires manage_users. Returns 204.
func (h *UserHandler) UpdateHandler(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	input := domain.UpdateUserInput{
		IsRoot:   req.IsRoot,
		Password: req.Password,
		Roles:    req.Roles,
	}
	if err := h.authUseCase.UpdateUser(c.Request.Context(), c.Param("user"), input); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// DeleteHandler removes a user. Users cannot remove their own account; that
// answers 405 so an admin UI can distinguish it from a permission problem.
// DELETE /auth/users/:user/ - Requires manage_users. Returns 204.
func (h *UserHandler) DeleteHandler(c *gin.Context) {
	username := c.Param("user")

	if claims, ok := gateway.ClaimsFrom(c.Request.Context()); ok && claims.Username == username {
		httputil.HandleErrorGin(c, apperrors.Wrapf(domain.ErrSelfDeletion, "user %q", username), h.logger)
		return
	}

	if err := h.authUseCase.RemoveUser(c.Request.Context(), username, false); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// ReplaceRolesHandler replaces a user's role set.
// POST /auth/users/:user/roles/ - Requires manage_users. Returns 204.
func (h *UserHandler) ReplaceRolesHandler(c *gin.Context) {
	var req dto.UserRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	input := domain.UpdateUserInput{Roles: &req.Roles}
	if err := h.authUseCase.UpdateUser(c.Request.Context(), c.Param("user"), input); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// AddRoleHandler assigns one role to a user.
// PATCH /auth/users/:user/roles/ - Requires manage_users. Returns 204.
func (h *UserHandler) AddRoleHandler(c *gin.Context) {
	var req dto.AddUserRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.authUseCase.AddUserRole(c.Request.Context(), c.Param("user"), req.Role); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// GetActivitiesHandler returns a user's derived activity list.
// GET /auth/users/:user/activities/ - Requires view_users, or being that user.
func (h *UserHandler) GetActivitiesHandler(c *gin.Context) {
	activities, err := h.authUseCase.UserActivities(c.Request.Context(), c.Param("user"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	if activities == nil {
		activities = []string{}
	}

	c.JSON(http.StatusOK, dto.ActivitiesResponse{Activities: activities})
}
