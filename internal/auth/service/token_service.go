package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/allisson/authd/internal/auth/domain"
	apperrors "github.com/allisson/authd/internal/errors"
)

const issuer = "authd"

// tokenService implements TokenService with HS256-signed JWTs.
type tokenService struct {
	secret    []byte
	expiresIn time.Duration
}

// NewTokenService creates a TokenService signing with the given shared secret
// and expiry duration.
func NewTokenService(secret string, expiresIn time.Duration) TokenService {
	return &tokenService{
		secret:    []byte(secret),
		expiresIn: expiresIn,
	}
}

// Sign issues a token for the given identity and serialized activity bitmap.
func (t *tokenService) Sign(username string, isRoot bool, activityBitmap string) (string, error) {
	now := time.Now().UTC()
	claims := domain.Claims{
		Username:       username,
		IsRoot:         isRoot,
		ActivityBitmap: activityBitmap,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.expiresIn)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign token")
	}
	return signed, nil
}

// Verify checks the signature and expiry and returns the decoded claims.
// Tampered, expired or otherwise unverifiable tokens all surface as
// domain.ErrInvalidToken so callers treat them as an authentication failure,
// not a generic error.
func (t *tokenService) Verify(token string) (*domain.Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &domain.Claims{}, func(tok *jwt.Token) (any, error) {
		if tok.Method != jwt.SigningMethodHS256 {
			return nil, domain.ErrInvalidToken
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*domain.Claims)
	if !ok || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}
	if claims.Username == "" {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
