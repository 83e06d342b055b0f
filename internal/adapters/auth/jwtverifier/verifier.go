// Package jwtverifier valida tokens HS256 firmados con un secreto compartido.
package jwtverifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rural-health-core/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoSecret     = errors.New("jwt secret is empty")
	ErrInvalidToken = errors.New("invalid token")
)

type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

func New(secret string) (*Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrNoSecret
	}
	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}, nil
}

// Verify acepta el usuario en "sub" o, si falta, en "user_id".
func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	claims := jwt.MapClaims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	uid, _ := claims.GetSubject()
	if strings.TrimSpace(uid) == "" {
		uid = stringClaim(claims, "user_id")
	}
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return auth.Claims{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return auth.Claims{
		UserID: uid,
		Email:  strings.TrimSpace(stringClaim(claims, "email")),
	}, nil
}

func stringClaim(c jwt.MapClaims, key string) string {
	switch v := c[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	}
	return ""
}
