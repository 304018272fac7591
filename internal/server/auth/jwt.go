// Package auth issues and checks the access keys clients present to the
// server. A key is an HS256 JWT naming the client it was issued to.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidAccessKey = errors.New("invalid access key")
	ErrAccessKeyExpired = errors.New("access key expired")
)

// Claims are the registered claims plus the name of the client the key
// was issued to.
type Claims struct {
	jwt.RegisteredClaims
	Client string `json:"client"`
}

// GenerateAccessKey signs a key for client valid for validityDuration. A
// non-positive duration yields a key that never expires.
func GenerateAccessKey(client string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   "worklog",
			IssuedAt: jwt.NewNumericDate(now),
		},
		Client: client,
	}
	if validityDuration > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(validityDuration))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey)
}

// ParseAccessKey verifies key against secretKey and returns the client
// name it carries.
func ParseAccessKey(key string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(key, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrAccessKeyExpired
		}
		return "", ErrInvalidAccessKey
	}

	if !token.Valid || claims.Client == "" {
		return "", ErrInvalidAccessKey
	}

	return claims.Client, nil
}
