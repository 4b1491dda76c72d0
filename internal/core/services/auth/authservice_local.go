package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/core/ports/secondary"
	"gitlab.com/codeprep.net/internal/domain"
	"gitlab.com/codeprep.net/internal/static/errs"
)

var _ IAuthService = &localAuthService{}

const (
	minUserNameLength = 3
	maxUserNameLength = 50
	minPasswordLength = 6
)

type localAuthService struct {
	userPort       secondary.UserPort
	jwtProvider    primary.JWTService
	adminUserNames []string
	logger         primary.Logger
}

func NewLocalAuthService(
	userPort secondary.UserPort,
	jwtProvider primary.JWTService,
	adminUserNames []string,
	logger primary.Logger,
) IAuthService {
	return &localAuthService{
		userPort:       userPort,
		jwtProvider:    jwtProvider,
		adminUserNames: adminUserNames,
		logger:         logger,
	}
}

func (g localAuthService) ProviderName() domain.Provider {
	return domain.ProviderLocal
}

func (g localAuthService) Register(ctx context.Context, credentials domain.Credentials) (*domain.LoginResponse, error) {
	userName := strings.TrimSpace(credentials.UserName)
	if n := utf8.RuneCountInString(userName); n < minUserNameLength || n > maxUserNameLength {
		return nil, fmt.Errorf("%w: username must be %d to %d characters", errs.ErrInvalidArgument, minUserNameLength, maxUserNameLength)
	}
	if utf8.RuneCountInString(credentials.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", errs.ErrInvalidArgument, minPasswordLength)
	}

	existing, err := g.userPort.GetByUserName(ctx, userName)
	if err != nil {
		g.logger.Error("Failed to look up user", "userName", userName, "error", err)
		return nil, errs.InternalError
	}
	if existing != nil {
		return nil, errs.UserNameTaken
	}

	hash, err := g.jwtProvider.EncryptPassword(ctx, credentials.Password)
	if err != nil {
		g.logger.Error("Failed to hash password", "error", err)
		return nil, errs.InternalError
	}

	role := domain.RoleUser
	if slices.Contains(g.adminUserNames, userName) {
		role = domain.RoleAdmin
	}
	user := &domain.Users{
		ID:           uuid.New(),
		UserName:     userName,
		PasswordHash: &hash,
		Email:        credentials.Email,
		Role:         role,
		AuthProvider: string(domain.ProviderLocal),
		CreatedAt:    time.Now().UTC(),
	}
	if err := g.userPort.Create(ctx, user); err != nil {
		if errors.Is(err, errs.UserNameTaken) {
			return nil, err
		}
		g.logger.Error("Failed to create user", "userName", userName, "error", err)
		return nil, errs.FailedToCreateUser
	}
	g.logger.Info("Registered user", "userId", user.ID, "role", role)

	return g.respond(ctx, user)
}

func (g localAuthService) Login(ctx context.Context, credentials domain.Credentials) (*domain.LoginResponse, error) {
	usr, err := g.userPort.GetByUserName(ctx, strings.TrimSpace(credentials.UserName))
	if err != nil {
		g.logger.Error("Failed to look up user", "userName", credentials.UserName, "error", err)
		return nil, errs.InternalError
	}
	if usr == nil || usr.PasswordHash == nil {
		return nil, errs.InvalidCredentials
	}
	valid, err := g.jwtProvider.VerifyPassword(ctx, *usr.PasswordHash, credentials.Password)
	if err != nil || !valid {
		return nil, errs.InvalidCredentials
	}

	return g.respond(ctx, usr)
}

func (g localAuthService) respond(ctx context.Context, user *domain.Users) (*domain.LoginResponse, error) {
	token, err := g.generateToken(ctx, user)
	if err != nil {
		return nil, err
	}
	return &domain.LoginResponse{Token: token, User: user}, nil
}

func (g localAuthService) generateToken(ctx context.Context, user *domain.Users) (string, error) {
	authPayload := domain.AuthPayload{
		UserID:   user.ID.String(),
		Username: user.UserName,
		Role:     user.Role,
	}
	var buf bytes.Buffer

	err := json.NewEncoder(&buf).Encode(authPayload)
	if err != nil {
		return "", errs.InternalError
	}
	var payload map[string]interface{}
	err = json.Unmarshal(buf.Bytes(), &payload)
	if err != nil {
		g.logger.Error("Failed to unmarshal auth payload", "error", err)
		return "", errs.InternalError
	}
	token, err := g.jwtProvider.GenerateTokenHMAC(ctx, jwt.SigningMethodHS256.Name, payload)
	if err != nil {
		return "", errs.GeneratingToken
	}
	return token, nil
}
