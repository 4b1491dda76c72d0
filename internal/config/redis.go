package config

import "time"

type RedisConfig struct {
	Enabled     bool
	DB          int
	Url         string
	Password    string
	TestCaseTTL time.Duration
}

func NewRedisConfig() *RedisConfig {
	return &RedisConfig{
		Enabled:     getBoolEnv("REDIS_ENABLED", true),
		DB:          getIntEnv("REDIS_DB", 0),
		Url:         getEnv("REDIS_ADDR", "localhost:6379"),
		Password:    getEnv("REDIS_PASSWORD", ""),
		TestCaseTTL: time.Duration(getIntEnv("TEST_CASE_CACHE_TTL_SEC", 300)) * time.Second,
	}
}
