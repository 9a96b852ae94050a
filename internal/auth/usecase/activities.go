package usecase

import (
	"context"

	"github.com/allisson/authd/internal/auth/domain"
	"github.com/allisson/authd/internal/bitset"
	apperrors "github.com/allisson/authd/internal/errors"
)

// ActivityIndexMap returns a copy of the label-to-index map, restricted to
// the given labels when any are passed.
func (uc *authUseCase) ActivityIndexMap(labels ...string) map[string]int {
	return uc.index.Snapshot(labels...)
}

// ActivityIndex returns the index assigned to the given activity label.
func (uc *authUseCase) ActivityIndex(label string) (int, bool) {
	return uc.index.IndexOf(label)
}

// RegisterActivities assigns indices to any labels not yet known. Idempotent
// for already-registered labels.
func (uc *authUseCase) RegisterActivities(ctx context.Context, labels []string) error {
	return uc.index.Register(ctx, labels)
}

// UserActivities returns the union of the activity sets of the user's roles,
// deduplicated, in first-appearance order across roles.
func (uc *authUseCase) UserActivities(ctx context.Context, username string) ([]string, error) {
	if err := uc.AssertUser(ctx, username); err != nil {
		return nil, err
	}
	roles, err := uc.repo.UserRoles(ctx, username)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var activities []string
	for _, role := range roles {
		roleActivities, err := uc.repo.RoleActivities(ctx, role)
		if err != nil {
			return nil, err
		}
		for _, activity := range roleActivities {
			if _, ok := seen[activity]; ok {
				continue
			}
			seen[activity] = struct{}{}
			activities = append(activities, activity)
		}
	}
	return activities, nil
}

// userActivityBitmap builds the serialized activity bitmap for the user. An
// activity present on a role but absent from the index means the index and
// the role graph have diverged, which is an error rather than a silent skip.
func (uc *authUseCase) userActivityBitmap(ctx context.Context, username string) (string, error) {
	activities, err := uc.UserActivities(ctx, username)
	if err != nil {
		return "", err
	}

	bm := bitset.New()
	for _, activity := range activities {
		index, ok := uc.index.IndexOf(activity)
		if !ok {
			return "", apperrors.Wrapf(apperrors.ErrMisconfigured, "activity %q missing from index map", activity)
		}
		bm.Add(index)
	}
	return bm.String(), nil
}

// IssueToken builds and signs a token carrying the user's identity, root flag
// and activity bitmap.
func (uc *authUseCase) IssueToken(ctx context.Context, username string) (string, error) {
	user, err := uc.GetUser(ctx, username, false)
	if err != nil {
		return "", err
	}
	bitmap, err := uc.userActivityBitmap(ctx, username)
	if err != nil {
		return "", err
	}
	return uc.tokens.Sign(user.Username, user.IsRoot, bitmap)
}

// Authenticate verifies the username and password and returns the user with
// a freshly issued token. A wrong password and an unknown user both surface
// as credential failures.
func (uc *authUseCase) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := uc.GetUser(ctx, username, true)
	if err != nil {
		return nil, err
	}

	hash, err := uc.repo.PasswordHash(ctx, username)
	if err != nil {
		return nil, err
	}
	ok, err := uc.hasher.Verify([]byte(password), hash)
	if err != nil || !ok {
		return nil, apperrors.Wrapf(domain.ErrWrongPassword, "user %q", username)
	}

	token, err := uc.IssueToken(ctx, username)
	if err != nil {
		return nil, err
	}
	user.Token = token
	return user, nil
}

// Authorize verifies the token and reports whether its bearer may perform the
// activity at the given index. Root bearers are allowed everything.
func (uc *authUseCase) Authorize(ctx context.Context, token string, activityIndex int) (bool, error) {
	claims, err := uc.tokens.Verify(token)
	if err != nil {
		return false, err
	}
	if claims.IsRoot {
		return true, nil
	}
	return bitset.HasIndex(claims.ActivityBitmap, activityIndex), nil
}
