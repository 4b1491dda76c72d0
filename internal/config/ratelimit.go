package config

import "time"

type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

func NewRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		Enabled:  getBoolEnv("RATE_LIMIT_ENABLED", true),
		Requests: getIntEnv("RATE_LIMIT_REQUESTS", 20),
		Window:   time.Duration(getIntEnv("RATE_LIMIT_WINDOW_SEC", 60)) * time.Second,
	}
}
