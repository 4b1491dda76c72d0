package crypto

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/codeprep.net/internal/config"
	"gitlab.com/codeprep.net/internal/domain"
)

func newService(secret string, ttl time.Duration) *JWTServiceImpl {
	return NewJWTService(&config.JwtConfig{Secret: secret, ExpiresIn: ttl}).(*JWTServiceImpl)
}

func TestGenerateAndParse(t *testing.T) {
	svc := newService("s3cret", time.Hour)
	ctx := context.Background()

	token, err := svc.GenerateTokenHMAC(ctx, jwt.SigningMethodHS256.Name, map[string]interface{}{
		"sub":      "user-1",
		"username": "alice",
		"role":     "admin",
	})
	require.NoError(t, err)

	payload, err := svc.ParseTokenHMAC(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, domain.AuthPayload{UserID: "user-1", Username: "alice", Role: domain.RoleAdmin}, payload)
}

func TestParseRejects(t *testing.T) {
	ctx := context.Background()
	svc := newService("s3cret", time.Hour)

	other, err := newService("other", time.Hour).GenerateTokenHMAC(ctx, "HS256", map[string]interface{}{"sub": "u"})
	require.NoError(t, err)
	_, err = svc.ParseTokenHMAC(ctx, other)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	expired, err := svc.GenerateTokenHMAC(ctx, "HS256", map[string]interface{}{
		"sub": "u",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	require.NoError(t, err)
	_, err = svc.ParseTokenHMAC(ctx, expired)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	noSubject, err := svc.GenerateTokenHMAC(ctx, "HS256", map[string]interface{}{"username": "bob"})
	require.NoError(t, err)
	_, err = svc.ParseTokenHMAC(ctx, noSubject)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	_, err = svc.ParseTokenHMAC(ctx, "not.a.token")
	assert.Error(t, err)

	_, err = svc.GenerateTokenHMAC(ctx, "nope", map[string]interface{}{})
	assert.Error(t, err)
}

func TestPasswords(t *testing.T) {
	svc := newService("s3cret", 0)
	assert.Equal(t, defaultExpiry, svc.ExpiresIn)
	ctx := context.Background()

	hash, err := svc.EncryptPassword(ctx, "hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	ok, err := svc.VerifyPassword(ctx, hash, "hunter22")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.VerifyPassword(ctx, hash, "wrong")
	assert.Error(t, err)
	assert.False(t, ok)
}
