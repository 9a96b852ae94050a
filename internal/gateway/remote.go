package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	apperrors "github.com/allisson/authd/internal/errors"
)

// RemoteRegistrarConfig tunes the retry behavior of the remote registrar.
// Services usually start before the auth service is reachable, so the retry
// budget is generous and the backoff grows geometrically up to a ceiling.
type RemoteRegistrarConfig struct {
	Host       string
	Retries    int
	MinBackoff time.Duration
	MaxBackoff time.Duration
	Factor     float64
}

// DefaultRemoteRegistrarConfig returns the retry defaults for the given auth
// host.
func DefaultRemoteRegistrarConfig(host string) RemoteRegistrarConfig {
	return RemoteRegistrarConfig{
		Host:       host,
		Retries:    100,
		MinBackoff: 3 * time.Second,
		MaxBackoff: time.Minute,
		Factor:     1.5,
	}
}

// RemoteRegistrar registers activities with a remote auth service over HTTP.
// Used by downstream services that enforce authorization locally but do not
// own the activity index.
type RemoteRegistrar struct {
	cfg    RemoteRegistrarConfig
	client *http.Client
	logger *slog.Logger
}

// NewRemoteRegistrar creates a registrar that talks to the configured auth
// host.
func NewRemoteRegistrar(cfg RemoteRegistrarConfig, logger *slog.Logger) *RemoteRegistrar {
	return &RemoteRegistrar{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

type registerActivitiesRequest struct {
	Activities []string `json:"activities"`
}

// RegisterActivities sends the labels to the auth service and returns the
// assigned indices, retrying with growing backoff until the retry budget is
// exhausted or the context is canceled.
func (r *RemoteRegistrar) RegisterActivities(ctx context.Context, labels []string) (map[string]int, error) {
	backoff := r.cfg.MinBackoff
	var lastErr error

	for attempt := 0; attempt <= r.cfg.Retries; attempt++ {
		if attempt > 0 {
			r.logger.Warn("activity registration retry",
				slog.Int("attempt", attempt),
				slog.Duration("backoff", backoff),
				slog.String("error", lastErr.Error()),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff = time.Duration(float64(backoff) * r.cfg.Factor)
			if backoff > r.cfg.MaxBackoff {
				backoff = r.cfg.MaxBackoff
			}
		}

		indices, err := r.registerOnce(ctx, labels)
		if err == nil {
			return indices, nil
		}
		lastErr = err
	}

	return nil, apperrors.Wrap(lastErr, "activity registration retries exhausted")
}

func (r *RemoteRegistrar) registerOnce(ctx context.Context, labels []string) (map[string]int, error) {
	body, err := json.Marshal(registerActivitiesRequest{Activities: labels})
	if err != nil {
		return nil, err
	}

	url := r.cfg.Host + "/auth/activities/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth service returned status %d", resp.StatusCode)
	}

	var indices map[string]int
	if err := json.NewDecoder(resp.Body).Decode(&indices); err != nil {
		return nil, err
	}
	return indices, nil
}
