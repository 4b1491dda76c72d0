package userrepository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gitlab.com/codeprep.net/internal/adapter/sqldb"
	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/static/errs"
	querybuilder "gitlab.com/codeprep.net/internal/utils"
)

var _ secondary.UserPort = &userRepo{}

type userRepo struct {
	db     *sqlx.DB
	logger primary.Logger
	schema string
}

func New(db *sqlx.DB, logger primary.Logger, schema string) secondary.UserPort {
	return &userRepo{
		db:     db,
		logger: logger,
		schema: schema,
	}
}

func (u userRepo) Create(ctx context.Context, user *domain.Users) error {
	userTbl := domain.GetUserTable()
	query, args := querybuilder.NewQueryBuilder(u.schema).Insert(
		userTbl.ID,
		userTbl.UserName, userTbl.Email, userTbl.PasswordHash,
		userTbl.Role, userTbl.AuthProvider, userTbl.CreatedAt,
	).
		Into(userTbl.GetTableName()).
		Values(
			user.ID,
			user.UserName, user.Email, user.PasswordHash,
			user.Role, user.AuthProvider, user.CreatedAt,
		).
		Build()

	_, err := u.db.ExecContext(ctx, u.db.Rebind(query), args...)
	if sqldb.IsUniqueViolation(err) {
		return errs.UserNameTaken
	}
	return err
}

func (u userRepo) getBy(ctx context.Context, col string, value interface{}) (*domain.Users, error) {
	userTbl := domain.GetUserTable()
	query, args := querybuilder.NewQueryBuilder(u.schema).
		Select(
			userTbl.ID,
			userTbl.UserName, userTbl.Email, userTbl.PasswordHash,
			userTbl.Role, userTbl.AuthProvider, userTbl.CreatedAt,
		).
		From(userTbl.GetTableName()).
		Where(fmt.Sprintf("%s = ?", col), value).
		Build()

	var user domain.Users
	err := u.db.GetContext(ctx, &user, u.db.Rebind(query), args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (u userRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Users, error) {
	return u.getBy(ctx, domain.GetUserTable().ID, id)
}

func (u userRepo) GetByUserName(ctx context.Context, userName string) (*domain.Users, error) {
	return u.getBy(ctx, domain.GetUserTable().UserName, userName)
}
