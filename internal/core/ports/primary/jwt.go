package primary

import (
	"context"

	"gitlab.com/codeprep.net/internal/domain"
)

type JWTService interface {
	GenerateTokenHMAC(ctx context.Context, method string, claims map[string]interface{}) (string, error)
	ParseTokenHMAC(ctx context.Context, token string) (domain.AuthPayload, error)
	EncryptPassword(ctx context.Context, password string) (string, error)
	VerifyPassword(ctx context.Context, passwordHash string, pwd string) (bool, error)
}
