// Package gateway enforces activity-based authorization on verified token
// claims. Services declare the activities their routes require; the gateway
// registers those labels with the authorization core (directly or over HTTP),
// caches the assigned indices, and decides each request from the claims
// bitmap alone, without a store round trip.
package gateway

import (
	"context"
	"log/slog"
	"sync"

	"github.com/allisson/authd/internal/auth/domain"
	"github.com/allisson/authd/internal/bitset"
	apperrors "github.com/allisson/authd/internal/errors"
	"github.com/allisson/authd/internal/metrics"
)

// Can reports whether the current claims grant any of the given activity
// labels. Labels without a cached index read as not granted.
type Can func(labels ...string) bool

// Requirement is what a route demands of the caller: a single activity label,
// or a predicate evaluated against the caller's grants.
type Requirement struct {
	activity  string
	predicate func(can Can) (bool, error)
}

// Activity requires the caller to hold the given activity.
func Activity(label string) Requirement {
	return Requirement{activity: label}
}

// Predicate requires the given function to return true for the caller.
func Predicate(fn func(can Can) (bool, error)) Requirement {
	return Requirement{predicate: fn}
}

// Registrar registers activity labels with the authorization core and returns
// the label-to-index sub-map for them.
type Registrar interface {
	RegisterActivities(ctx context.Context, labels []string) (map[string]int, error)
}

// Gateway holds the cached activity indices and decides requirements against
// verified claims.
type Gateway struct {
	registrar Registrar
	metrics   metrics.BusinessMetrics
	logger    *slog.Logger

	mu       sync.RWMutex
	indices  map[string]int
	declared map[string]struct{}
}

// New creates a gateway on the given registrar. Call RegisterActivities after
// all requirements are declared and before serving traffic.
func New(registrar Registrar, businessMetrics metrics.BusinessMetrics, logger *slog.Logger) *Gateway {
	return &Gateway{
		registrar: registrar,
		metrics:   businessMetrics,
		logger:    logger,
		indices:   make(map[string]int),
		declared:  make(map[string]struct{}),
	}
}

// Declare records activity labels for the next RegisterActivities call.
// Middleware constructors declare their labels automatically; Declare is for
// labels only used inside predicates.
func (g *Gateway) Declare(labels ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, label := range labels {
		g.declared[label] = struct{}{}
	}
}

// RegisterActivities registers every declared label with the core and caches
// the returned indices. Idempotent; safe to call again after declaring more
// labels.
func (g *Gateway) RegisterActivities(ctx context.Context) error {
	g.mu.RLock()
	labels := make([]string, 0, len(g.declared))
	for label := range g.declared {
		labels = append(labels, label)
	}
	g.mu.RUnlock()

	if len(labels) == 0 {
		return nil
	}

	indices, err := g.registrar.RegisterActivities(ctx, labels)
	if err != nil {
		return apperrors.Wrap(err, "failed to register activities")
	}

	g.mu.Lock()
	for label, index := range indices {
		g.indices[label] = index
	}
	g.mu.Unlock()

	g.logger.Info("activities registered", slog.Int("count", len(indices)))
	return nil
}

// IndexOf returns the cached index for the given label.
func (g *Gateway) IndexOf(label string) (int, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	index, ok := g.indices[label]
	return index, ok
}

// Decide evaluates the requirement against the claims. Root claims pass
// unconditionally. An activity requirement whose label has no cached index is
// a deployment fault and surfaces as a misconfiguration, never as a denial.
func (g *Gateway) Decide(ctx context.Context, claims *domain.Claims, req Requirement) error {
	if claims.IsRoot {
		g.record(ctx, "allow")
		return nil
	}

	if req.predicate != nil {
		ok, err := req.predicate(g.can(claims))
		if err != nil {
			g.record(ctx, "deny")
			return apperrors.Wrap(apperrors.ErrForbidden, err.Error())
		}
		if !ok {
			g.record(ctx, "deny")
			return apperrors.ErrForbidden
		}
		g.record(ctx, "allow")
		return nil
	}

	index, ok := g.IndexOf(req.activity)
	if !ok {
		g.record(ctx, "misconfigured")
		return apperrors.Wrapf(apperrors.ErrMisconfigured, "activity %q has no registered index", req.activity)
	}
	if !bitset.HasIndex(claims.ActivityBitmap, index) {
		g.record(ctx, "deny")
		return apperrors.Wrapf(apperrors.ErrForbidden, "activity %q not granted", req.activity)
	}
	g.record(ctx, "allow")
	return nil
}

// can builds the grant test closure for the given claims.
func (g *Gateway) can(claims *domain.Claims) Can {
	return func(labels ...string) bool {
		for _, label := range labels {
			index, ok := g.IndexOf(label)
			if ok && bitset.HasIndex(claims.ActivityBitmap, index) {
				return true
			}
		}
		return false
	}
}

func (g *Gateway) record(ctx context.Context, decision string) {
	g.metrics.RecordOperation(ctx, "gateway", "authorize", decision)
}
