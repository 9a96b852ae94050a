package usecase

import (
	"context"
	"time"

	"github.com/allisson/authd/internal/auth/domain"
	"github.com/allisson/authd/internal/metrics"
)

// authUseCaseWithMetrics decorates AuthUseCase with metrics instrumentation.
// Graph mutations and token operations are recorded; pure reads pass through.
type authUseCaseWithMetrics struct {
	next    AuthUseCase
	metrics metrics.BusinessMetrics
}

// NewAuthUseCaseWithMetrics wraps an AuthUseCase with metrics recording.
func NewAuthUseCaseWithMetrics(useCase AuthUseCase, m metrics.BusinessMetrics) AuthUseCase {
	return &authUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// record emits the operation counter and duration histogram for one call.
func (a *authUseCaseWithMetrics) record(ctx context.Context, metricDomain, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, metricDomain, operation, status)
	a.metrics.RecordDuration(ctx, metricDomain, operation, time.Since(start), status)
}

func (a *authUseCaseWithMetrics) HasRole(ctx context.Context, role string) (bool, error) {
	return a.next.HasRole(ctx, role)
}

func (a *authUseCaseWithMetrics) AssertRole(ctx context.Context, role string) error {
	return a.next.AssertRole(ctx, role)
}

// AddRole records metrics for role creation operations.
func (a *authUseCaseWithMetrics) AddRole(ctx context.Context, role string, activities []string) error {
	start := time.Now()
	err := a.next.AddRole(ctx, role, activities)
	a.record(ctx, "roles", "role_add", start, err)
	return err
}

func (a *authUseCaseWithMetrics) GetRole(ctx context.Context, role string) (*domain.Role, error) {
	return a.next.GetRole(ctx, role)
}

func (a *authUseCaseWithMetrics) GetRoles(ctx context.Context) ([]*domain.Role, error) {
	return a.next.GetRoles(ctx)
}

// RemoveRole records metrics for role removal operations.
func (a *authUseCaseWithMetrics) RemoveRole(ctx context.Context, role string, assertRemoval bool) error {
	start := time.Now()
	err := a.next.RemoveRole(ctx, role, assertRemoval)
	a.record(ctx, "roles", "role_remove", start, err)
	return err
}

// UpdateRole records metrics for role update operations.
func (a *authUseCaseWithMetrics) UpdateRole(ctx context.Context, role string, activities []string) error {
	start := time.Now()
	err := a.next.UpdateRole(ctx, role, activities)
	a.record(ctx, "roles", "role_update", start, err)
	return err
}

// AddRoleActivities records metrics for role activity-set mutations.
func (a *authUseCaseWithMetrics) AddRoleActivities(ctx context.Context, role string, activities ...string) error {
	start := time.Now()
	err := a.next.AddRoleActivities(ctx, role, activities...)
	a.record(ctx, "roles", "role_add_activities", start, err)
	return err
}

func (a *authUseCaseWithMetrics) HasUser(ctx context.Context, username string) (bool, error) {
	return a.next.HasUser(ctx, username)
}

func (a *authUseCaseWithMetrics) AssertUser(ctx context.Context, username string) error {
	return a.next.AssertUser(ctx, username)
}

// AddUser records metrics for user creation operations.
func (a *authUseCaseWithMetrics) AddUser(ctx context.Context, username, password string, roles []string, isRoot bool) error {
	start := time.Now()
	err := a.next.AddUser(ctx, username, password, roles, isRoot)
	a.record(ctx, "users", "user_add", start, err)
	return err
}

func (a *authUseCaseWithMetrics) GetUser(ctx context.Context, username string, includeActivities bool) (*domain.User, error) {
	return a.next.GetUser(ctx, username, includeActivities)
}

func (a *authUseCaseWithMetrics) GetUsers(ctx context.Context, includeActivities bool) ([]*domain.User, error) {
	return a.next.GetUsers(ctx, includeActivities)
}

// RemoveUser records metrics for user removal operations.
func (a *authUseCaseWithMetrics) RemoveUser(ctx context.Context, username string, assertRemoval bool) error {
	start := time.Now()
	err := a.next.RemoveUser(ctx, username, assertRemoval)
	a.record(ctx, "users", "user_remove", start, err)
	return err
}

// UpdateUser records metrics for user update operations.
func (a *authUseCaseWithMetrics) UpdateUser(ctx context.Context, username string, input domain.UpdateUserInput) error {
	start := time.Now()
	err := a.next.UpdateUser(ctx, username, input)
	a.record(ctx, "users", "user_update", start, err)
	return err
}

// AddUserRole records metrics for role assignment operations.
func (a *authUseCaseWithMetrics) AddUserRole(ctx context.Context, username, role string) error {
	start := time.Now()
	err := a.next.AddUserRole(ctx, username, role)
	a.record(ctx, "users", "user_add_role", start, err)
	return err
}

// RemoveUserRole records metrics for role unassignment operations.
func (a *authUseCaseWithMetrics) RemoveUserRole(ctx context.Context, username, role string) error {
	start := time.Now()
	err := a.next.RemoveUserRole(ctx, username, role)
	a.record(ctx, "users", "user_remove_role", start, err)
	return err
}

func (a *authUseCaseWithMetrics) ActivityIndexMap(labels ...string) map[string]int {
	return a.next.ActivityIndexMap(labels...)
}

func (a *authUseCaseWithMetrics) ActivityIndex(label string) (int, bool) {
	return a.next.ActivityIndex(label)
}

// RegisterActivities records metrics for activity registration operations.
func (a *authUseCaseWithMetrics) RegisterActivities(ctx context.Context, labels []string) error {
	start := time.Now()
	err := a.next.RegisterActivities(ctx, labels)
	a.record(ctx, "activities", "register", start, err)
	return err
}

func (a *authUseCaseWithMetrics) UserActivities(ctx context.Context, username string) ([]string, error) {
	return a.next.UserActivities(ctx, username)
}

// IssueToken records metrics for token issuance operations.
func (a *authUseCaseWithMetrics) IssueToken(ctx context.Context, username string) (string, error) {
	start := time.Now()
	token, err := a.next.IssueToken(ctx, username)
	a.record(ctx, "tokens", "issue_token", start, err)
	return token, err
}

// Authenticate records metrics for credential verification operations.
func (a *authUseCaseWithMetrics) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	start := time.Now()
	user, err := a.next.Authenticate(ctx, username, password)
	a.record(ctx, "tokens", "authenticate", start, err)
	return user, err
}

// Authorize records metrics for token authorization checks.
func (a *authUseCaseWithMetrics) Authorize(ctx context.Context, token string, activityIndex int) (bool, error) {
	start := time.Now()
	allowed, err := a.next.Authorize(ctx, token, activityIndex)
	a.record(ctx, "tokens", "authorize", start, err)
	return allowed, err
}

func (a *authUseCaseWithMetrics) AssertConsistency(ctx context.Context) error {
	return a.next.AssertConsistency(ctx)
}

// Reset records metrics for store reset operations.
func (a *authUseCaseWithMetrics) Reset(ctx context.Context) error {
	start := time.Now()
	err := a.next.Reset(ctx)
	a.record(ctx, "system", "reset", start, err)
	return err
}
