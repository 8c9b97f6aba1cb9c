package utils // package utils provides helpers for token creation and verification

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by both token kinds. Sub holds the user id in hex form and
// Roles the user's role tags at signing time. Access and refresh tokens are
// signed with different secrets so one can never stand in for the other.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// SignedToken pairs a serialized JWT with its expiry. The expiry is echoed
// to clients and used when setting the refresh cookie.
type SignedToken struct {
	Token string
	Exp   time.Time
}

// NewToken builds and signs an HS256 JWT for a user. The subject is the
// user's hex id; ttl controls the exp claim. The same constructor serves
// access tokens (short ttl, access secret) and refresh tokens (long ttl,
// refresh secret).
func NewToken(secret, userID string, roles []string, ttl time.Duration) (SignedToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// ParseToken verifies signature and expiry and returns the embedded claims.
// Only HMAC-signed tokens are accepted. Expired and malformed tokens come
// back as jwt.ErrTokenExpired / jwt.ErrTokenMalformed wrapped errors, which
// the boundary error handler translates distinctly.
func ParseToken(secret, raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}
