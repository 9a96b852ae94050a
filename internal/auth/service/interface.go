// Package service provides token signing and verification for the
// authorization core. Tokens are HMAC-signed JWTs carrying the user's
// resolved activity bitmap, verifiable with the shared secret alone.
package service

import (
	"github.com/allisson/authd/internal/auth/domain"
)

// TokenService signs and verifies authorization tokens.
type TokenService interface {
	// Sign issues a token for the given identity and serialized activity
	// bitmap, with the configured expiry.
	Sign(username string, isRoot bool, activityBitmap string) (string, error)
	// Verify checks the token signature and expiry and returns the decoded
	// claims. Any failure surfaces as domain.ErrInvalidToken.
	Verify(token string) (*domain.Claims, error)
}
