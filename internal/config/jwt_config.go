package config

import (
	"os"
	"time"
)

type JwtConfig struct {
	Secret    string
	ExpiresIn time.Duration
	// AdminUserNames get the admin role when they register
	AdminUserNames []string
}

func NewJwtConfig() *JwtConfig {
	return &JwtConfig{
		Secret:         os.Getenv("JWT_SECRET"),
		ExpiresIn:      time.Duration(getIntEnv("JWT_EXPIRES_IN_MIN", 60*24*7)) * time.Minute,
		AdminUserNames: getListEnv("AUTH_ADMIN_USERNAMES"),
	}
}
