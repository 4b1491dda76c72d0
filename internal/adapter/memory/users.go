package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/static/errs"
)

var _ secondary.UserPort = (*UserRepository)(nil)

type UserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.Users
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[uuid.UUID]*domain.Users)}
}

func (r *UserRepository) Create(_ context.Context, user *domain.Users) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.UserName == user.UserName {
			return errs.UserNameTaken
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	c := *user
	r.users[user.ID] = &c
	return nil
}

func (r *UserRepository) Get(_ context.Context, id uuid.UUID) (*domain.Users, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, nil
}

func (r *UserRepository) GetByUserName(_ context.Context, userName string) (*domain.Users, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.UserName == userName {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}
