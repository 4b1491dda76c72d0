package crypto

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"golang.org/x/crypto/bcrypt"

	"gitlab.com/codeprep.net/internal/config"
	"gitlab.com/codeprep.net/internal/core/ports/primary"
	"gitlab.com/codeprep.net/internal/domain"
)

var _ primary.JWTService = (*JWTServiceImpl)(nil)

var (
	ErrInvalidToken = fmt.Errorf("invalid token")
)

const defaultExpiry = time.Hour

type JWTServiceImpl struct {
	HMACSecretKey string
	ExpiresIn     time.Duration
}

func NewJWTService(jwtConfig *config.JwtConfig) primary.JWTService {
	expiresIn := jwtConfig.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = defaultExpiry
	}
	return &JWTServiceImpl{
		HMACSecretKey: jwtConfig.Secret,
		ExpiresIn:     expiresIn,
	}
}

func (J JWTServiceImpl) GenerateTokenHMAC(ctx context.Context, method string, claims map[string]interface{}) (string, error) {
	signingMethod := jwt.GetSigningMethod(method)
	if signingMethod == nil {
		return "", fmt.Errorf("unsupported signing method: %s", method)
	}

	now := time.Now()
	if _, exists := claims["exp"]; !exists {
		claims["exp"] = now.Add(J.ExpiresIn).Unix()
	}
	if _, exists := claims["iat"]; !exists {
		claims["iat"] = now.Unix()
	}

	tok := jwt.NewWithClaims(signingMethod, jwt.MapClaims(claims))
	return tok.SignedString([]byte(J.HMACSecretKey))
}

func (J JWTServiceImpl) keyFunc(t *jwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return []byte(J.HMACSecretKey), nil
}

// ParseTokenHMAC verifies signature and expiry, then decodes the payload.
func (J JWTServiceImpl) ParseTokenHMAC(ctx context.Context, token string) (domain.AuthPayload, error) {
	parsedToken, err := jwt.Parse(token, J.keyFunc, jwt.WithExpirationRequired())
	if err != nil {
		return domain.AuthPayload{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsedToken.Valid {
		return domain.AuthPayload{}, ErrInvalidToken
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return domain.AuthPayload{}, ErrInvalidToken
	}
	data, err := json.Marshal(claims)
	if err != nil {
		return domain.AuthPayload{}, fmt.Errorf("failed to encode claims: %w", err)
	}
	payload, err := decodeAuthPayload(data)
	if err != nil {
		return domain.AuthPayload{}, err
	}
	if payload.UserID == "" {
		return domain.AuthPayload{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return payload, nil
}

func (JWTServiceImpl) VerifyPassword(ctx context.Context, passwordHash string, pwd string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(pwd))
	if err != nil {
		return false, err
	}
	return true, nil
}

func (J JWTServiceImpl) EncryptPassword(ctx context.Context, password string) (string, error) {
	pwd, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func decodeAuthPayload(data []byte) (domain.AuthPayload, error) {
	var authPayload domain.AuthPayload

	err := json.Unmarshal(data, &authPayload)
	if err != nil {
		return domain.AuthPayload{}, fmt.Errorf("failed to decode auth payload: %w", err)
	}

	return authPayload, nil
}
