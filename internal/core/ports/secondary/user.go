package secondary

import (
	"context"

	"github.com/google/uuid"

	"gitlab.com/codeprep.net/internal/domain"
)

type UserPort interface {
	Create(ctx context.Context, user *domain.Users) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Users, error)
	GetByUserName(ctx context.Context, userName string) (*domain.Users, error)
}
