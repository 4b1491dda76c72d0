package config

import "os"

type AppConfig struct {
	DebugMode       bool
	LogLevel        string
	HttpConfig      *HttpConfig
	DatabaseConfig  *DatabaseConfig
	RedisConfig     *RedisConfig
	JwtConfig       *JwtConfig
	ExecutionConfig *ExecutionConfig
	RateLimitConfig *RateLimitConfig
	KafkaConfig     *KafkaConfig
}

func NewSystemConfig() *AppConfig {
	return &AppConfig{
		DebugMode:       os.Getenv("DEBUG_MODE") == "true",
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		HttpConfig:      NewHttpConfig(),
		DatabaseConfig:  NewDatabaseConfig(),
		RedisConfig:     NewRedisConfig(),
		JwtConfig:       NewJwtConfig(),
		ExecutionConfig: NewExecutionConfig(),
		RateLimitConfig: NewRateLimitConfig(),
		KafkaConfig:     NewKafkaConfig(),
	}
}
