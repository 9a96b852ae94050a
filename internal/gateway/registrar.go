package gateway

import (
	"context"

	"github.com/allisson/authd/internal/auth/usecase"
)

// LocalRegistrar registers activities directly against an in-process
// authorization core. Used by the auth service itself.
type LocalRegistrar struct {
	core usecase.AuthUseCase
}

// NewLocalRegistrar creates a registrar on the given core.
func NewLocalRegistrar(core usecase.AuthUseCase) *LocalRegistrar {
	return &LocalRegistrar{core: core}
}

// RegisterActivities registers the labels and returns their indices.
func (r *LocalRegistrar) RegisterActivities(ctx context.Context, labels []string) (map[string]int, error) {
	if err := r.core.RegisterActivities(ctx, labels); err != nil {
		return nil, err
	}
	return r.core.ActivityIndexMap(labels...), nil
}
