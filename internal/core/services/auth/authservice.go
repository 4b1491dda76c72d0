package auth

import (
	"context"

	"gitlab.com/codeprep.net/internal/domain"
)

type IAuthService interface {
	ProviderName() domain.Provider
	Register(ctx context.Context, credentials domain.Credentials) (*domain.LoginResponse, error)
	Login(ctx context.Context, credentials domain.Credentials) (*domain.LoginResponse, error)
}
