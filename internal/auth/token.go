// Package auth issues and verifies the HS256 access tokens carried by sessions.
package auth

import (
	"errors"
	"fmt"
	"time"

	"dashboard/internal/apperror"
	"dashboard/internal/authz"
	"dashboard/internal/clock"

	"github.com/golang-jwt/jwt/v5"
)

type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewTokenIssuer(secret string, ttl time.Duration, clk clock.Clock) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, clock: clk}
}

// Issue signs an access token for id. The role is not a claim; it is derived per request.
func (i *TokenIssuer) Issue(id authz.Identity) (string, time.Time, error) {
	now := i.clock.Now()
	expiresAt := now.Add(i.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  id.Username,
		"name": id.DisplayName,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies tokenString and returns the identity it carries.
func (i *TokenIssuer) Parse(tokenString string) (authz.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.clock.Now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return authz.Identity{}, apperror.Unauthenticated("token expired")
		}
		return authz.Identity{}, apperror.Unauthenticated("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return authz.Identity{}, apperror.Unauthenticated("invalid token claims")
	}

	username, _ := claims["sub"].(string)
	displayName, _ := claims["name"].(string)
	if username == "" {
		return authz.Identity{}, apperror.Unauthenticated("token has no subject")
	}

	return authz.Identity{Username: username, DisplayName: displayName}, nil
}
