package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned by Inspect for tokens that are not three-part JWTs.
var ErrNotJWT = errors.New("token is not a jwt")

// Claims is the unverified subset of claims the client cares about.
type Claims struct {
	Subject   string
	UserName  string
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// Inspect decodes tokenStr without verifying its signature. Opaque tokens return
// ErrNotJWT.
func Inspect(tokenStr string) (*Claims, error) {
	var claims SessionClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, &claims); err != nil {
		return nil, errors.Join(ErrNotJWT, err)
	}

	out := &Claims{
		Subject:  claims.Subject,
		UserName: claims.UserName,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

// ExpiryOf returns the exp claim of tokenStr, if any.
func ExpiryOf(tokenStr string) (time.Time, bool) {
	claims, err := Inspect(tokenStr)
	if err != nil || claims.ExpiresAt.IsZero() {
		return time.Time{}, false
	}
	return claims.ExpiresAt, true
}
