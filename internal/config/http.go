package config

import "time"

type HttpConfig struct {
	Port            int
	ServiceName     string
	ShutdownTimeout time.Duration
}

func NewHttpConfig() *HttpConfig {
	return &HttpConfig{
		Port:            getIntEnv("HTTP_PORT", 8082),
		ServiceName:     getEnv("SERVICE_NAME", "codeprep"),
		ShutdownTimeout: time.Duration(getIntEnv("SHUTDOWN_TIMEOUT_SEC", 5)) * time.Second,
	}
}
