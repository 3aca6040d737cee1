package auth

import (
	"context"
	"errors"

	"github.com/yourname/habitroom/internal"
)

type LocalProvider struct {
	Token  string
	logger internal.Logger
}

func NewLocalProvider(token string, logger internal.Logger) *LocalProvider {
	return &LocalProvider{Token: token, logger: logger}
}

func (a *LocalProvider) CurrentUser(ctx context.Context, token string) (*internal.Member, error) {
	if token == a.Token {
		return &internal.Member{ID: "u1", Name: "Demo User", Email: "demo@example.com"}, nil
	}
	a.logger.Warnf("invalid token: %s", token)
	return nil, errors.New("invalid token")
}
