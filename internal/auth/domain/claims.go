package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the signed, self-contained statement of a user's identity and
// resolved authorization bitmap. ActivityBitmap is the serialized bitset
// holding the activity indices resolved at issuance time; downstream services
// authorize against it without consulting the store.
type Claims struct {
	Username       string `json:"username"`
	IsRoot         bool   `json:"isRoot"`
	ActivityBitmap string `json:"abm"`
	jwt.RegisteredClaims
}
