package auth

import (
	"context"
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/yourname/habitroom/internal"
)

// TokenProvider reads the current member from the claims of an HMAC-signed
// JWT issued by the identity service: `sub` carries the member id, `name`
// and `email` the display fields.
type TokenProvider struct {
	secret []byte
	logger internal.Logger
}

func NewTokenProvider(secret string, logger internal.Logger) *TokenProvider {
	return &TokenProvider{secret: []byte(secret), logger: logger}
}

func (a *TokenProvider) CurrentUser(ctx context.Context, tokenStr string) (*internal.Member, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		a.logger.Warnf("token rejected: %v", err)
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("unexpected token claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, errors.New("token missing sub claim")
	}
	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	if name == "" {
		name = email
	}
	if name == "" {
		name = "You"
	}
	return &internal.Member{ID: sub, Name: name, Email: email}, nil
}
