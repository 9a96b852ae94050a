package usecase

import (
	"context"
	"log/slog"

	"github.com/allisson/go-pwdhash"

	"github.com/allisson/authd/internal/activity"
	"github.com/allisson/authd/internal/auth/service"
	apperrors "github.com/allisson/authd/internal/errors"
	"github.com/allisson/authd/internal/store"
)

// authUseCase implements AuthUseCase on a graph repository, an activity
// index and a token service.
type authUseCase struct {
	repo   GraphRepository
	index  *activity.Index
	tokens service.TokenService
	hasher *pwdhash.PasswordHasher
	store  store.HashStore
	logger *slog.Logger
}

// NewAuthUseCase creates the authorization core. The activity index must be
// loaded (or will be loaded by the first Reset). The raw store handle is only
// used for the full wipe in Reset.
func NewAuthUseCase(
	repo GraphRepository,
	index *activity.Index,
	tokens service.TokenService,
	st store.HashStore,
	logger *slog.Logger,
) (AuthUseCase, error) {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create password hasher")
	}

	return &authUseCase{
		repo:   repo,
		index:  index,
		tokens: tokens,
		hasher: hasher,
		store:  st,
		logger: logger,
	}, nil
}

// Reset wipes all persisted state, clears the in-memory activity index and
// reloads it. Used by tests and admin tooling; every issued token becomes
// meaningless afterwards.
func (uc *authUseCase) Reset(ctx context.Context) error {
	if err := uc.store.FlushAll(ctx); err != nil {
		return err
	}
	if err := uc.index.Reset(ctx); err != nil {
		return err
	}
	return uc.index.Load(ctx)
}

// diff returns the elements of old not present in new (stale) and the
// elements of new not present in old (fresh).
func diff(oldList, newList []string) (stale, fresh []string) {
	oldSet := make(map[string]struct{}, len(oldList))
	for _, el := range oldList {
		oldSet[el] = struct{}{}
	}
	newSet := make(map[string]struct{}, len(newList))
	for _, el := range newList {
		newSet[el] = struct{}{}
	}
	for _, el := range oldList {
		if _, ok := newSet[el]; !ok {
			stale = append(stale, el)
		}
	}
	for _, el := range newList {
		if _, ok := oldSet[el]; !ok {
			fresh = append(fresh, el)
		}
	}
	return stale, fresh
}
