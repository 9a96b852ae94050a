package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/authd/internal/auth/domain"
	"github.com/allisson/authd/internal/auth/service"
	"github.com/allisson/authd/internal/bitset"
	apperrors "github.com/allisson/authd/internal/errors"
	"github.com/allisson/authd/internal/metrics"
)

// fakeRegistrar assigns indices in the order labels were first seen.
type fakeRegistrar struct {
	indices map[string]int
	calls   int
}

func newFakeRegistrar() *fakeRegistrar {
	return &fakeRegistrar{indices: make(map[string]int)}
}

func (f *fakeRegistrar) RegisterActivities(_ context.Context, labels []string) (map[string]int, error) {
	f.calls++
	result := make(map[string]int, len(labels))
	for _, label := range labels {
		if _, ok := f.indices[label]; !ok {
			f.indices[label] = len(f.indices)
		}
		result[label] = f.indices[label]
	}
	return result, nil
}

func newTestGateway(t *testing.T) (*Gateway, *fakeRegistrar) {
	t.Helper()
	registrar := newFakeRegistrar()
	g := New(registrar, metrics.NewNoOpBusinessMetrics(), slog.New(slog.DiscardHandler))
	return g, registrar
}

func claimsWith(indices ...int) *domain.Claims {
	return &domain.Claims{Username: "alice", ActivityBitmap: bitset.New(indices...).String()}
}

func TestGateway_DecideActivity(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx := context.Background()

	g.Declare("view_users", "manage_users")
	require.NoError(t, g.RegisterActivities(ctx))

	viewIndex, ok := g.IndexOf("view_users")
	require.True(t, ok)

	err := g.Decide(ctx, claimsWith(viewIndex), Activity("view_users"))
	assert.NoError(t, err)

	err = g.Decide(ctx, claimsWith(viewIndex), Activity("manage_users"))
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestGateway_DecideRootBypass(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx := context.Background()

	claims := &domain.Claims{Username: "root", IsRoot: true, ActivityBitmap: "0"}

	// Even an unregistered label passes for root.
	err := g.Decide(ctx, claims, Activity("anything"))
	assert.NoError(t, err)
}

func TestGateway_DecideUnregisteredActivity(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx := context.Background()

	// A requirement naming a label the gateway never registered is a
	// deployment fault, not a denial.
	err := g.Decide(ctx, claimsWith(0), Activity("never_registered"))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrMisconfigured))
	assert.False(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestGateway_DecidePredicate(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx := context.Background()

	g.Declare("view_users")
	require.NoError(t, g.RegisterActivities(ctx))
	viewIndex, _ := g.IndexOf("view_users")

	selfOrViewer := func(username string) Requirement {
		return Predicate(func(can Can) (bool, error) {
			return username == "alice" || can("view_users"), nil
		})
	}

	assert.NoError(t, g.Decide(ctx, claimsWith(), selfOrViewer("alice")))
	assert.NoError(t, g.Decide(ctx, claimsWith(viewIndex), selfOrViewer("bob")))

	err := g.Decide(ctx, claimsWith(), selfOrViewer("bob"))
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestGateway_PredicateUnknownLabelReadsAsDenied(t *testing.T) {
	g, _ := newTestGateway(t)
	ctx := context.Background()

	err := g.Decide(ctx, claimsWith(0), Predicate(func(can Can) (bool, error) {
		return can("never_registered"), nil
	}))
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestGateway_RegisterActivitiesIdempotent(t *testing.T) {
	g, registrar := newTestGateway(t)
	ctx := context.Background()

	g.Declare("a", "b")
	require.NoError(t, g.RegisterActivities(ctx))
	require.NoError(t, g.RegisterActivities(ctx))
	assert.Equal(t, 2, registrar.calls)

	aIndex, ok := g.IndexOf("a")
	require.True(t, ok)
	bIndex, ok := g.IndexOf("b")
	require.True(t, ok)
	assert.NotEqual(t, aIndex, bIndex)
}

func TestGateway_RegisterActivitiesNoLabels(t *testing.T) {
	g, registrar := newTestGateway(t)

	require.NoError(t, g.RegisterActivities(context.Background()))
	assert.Zero(t, registrar.calls)
}

func TestClaimsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.DiscardHandler)
	tokens := service.NewTokenService("test-secret", time.Hour)

	router := gin.New()
	router.GET("/protected", ClaimsMiddleware(tokens, logger), func(c *gin.Context) {
		claims, ok := ClaimsFrom(c.Request.Context())
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"username": claims.Username})
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := tokens.Sign("alice", false, "1")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "alice")
	})

	t.Run("case-insensitive scheme", func(t *testing.T) {
		token, err := tokens.Sign("alice", false, "1")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Basic abc")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGateway_RequireActivityMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.DiscardHandler)
	tokens := service.NewTokenService("test-secret", time.Hour)
	g, _ := newTestGateway(t)

	router := gin.New()
	router.Use(ClaimsMiddleware(tokens, logger))
	router.GET("/users", g.RequireActivity("view_users", logger), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	require.NoError(t, g.RegisterActivities(context.Background()))

	viewIndex, ok := g.IndexOf("view_users")
	require.True(t, ok)

	do := func(bitmap string, isRoot bool) int {
		token, err := tokens.Sign("alice", isRoot, bitmap)
		require.NoError(t, err)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do(bitset.New(viewIndex).String(), false))
	assert.Equal(t, http.StatusForbidden, do(bitset.New().String(), false))
	assert.Equal(t, http.StatusOK, do(bitset.New().String(), true))
}

func TestRemoteRegistrar(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	t.Run("success after transient failure", func(t *testing.T) {
		var attempts int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			assert.Equal(t, http.MethodPatch, r.Method)
			assert.Equal(t, "/auth/activities/", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"view_users":0,"manage_users":1}`))
		}))
		defer server.Close()

		cfg := DefaultRemoteRegistrarConfig(server.URL)
		cfg.MinBackoff = time.Millisecond
		cfg.MaxBackoff = 2 * time.Millisecond

		registrar := NewRemoteRegistrar(cfg, logger)
		indices, err := registrar.RegisterActivities(context.Background(), []string{"view_users", "manage_users"})
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"view_users": 0, "manage_users": 1}, indices)
		assert.Equal(t, 2, attempts)
	})

	t.Run("retry budget exhausted", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		cfg := DefaultRemoteRegistrarConfig(server.URL)
		cfg.Retries = 2
		cfg.MinBackoff = time.Millisecond
		cfg.MaxBackoff = 2 * time.Millisecond

		registrar := NewRemoteRegistrar(cfg, logger)
		_, err := registrar.RegisterActivities(context.Background(), []string{"view_users"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "retries exhausted")
	})

	t.Run("context canceled during backoff", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		cfg := DefaultRemoteRegistrarConfig(server.URL)
		cfg.MinBackoff = time.Hour

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		registrar := NewRemoteRegistrar(cfg, logger)
		_, err := registrar.RegisterActivities(ctx, []string{"view_users"})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
