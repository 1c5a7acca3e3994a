package config

import (
	"os"
	"time"
)

const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionSecret() string {
	return os.Getenv("SESSION_SECRET")
}

func (Session) GetMaxSessionAge() time.Duration {
	return GetEnvDuration("SESSION_MAX_AGE", 8*time.Hour)
}

func (Session) GetSessionStore() string {
	return GetEnv("SESSION_STORE", SessionStoreMemory)
}

func (Session) GetRedisAddr() string {
	return os.Getenv("REDIS_ADDR")
}

func (Session) GetRedisPassword() string {
	return os.Getenv("REDIS_PASSWORD")
}

func (Session) GetRedisDB() int {
	return GetEnvInt("REDIS_DB", 0)
}

func (Session) GetRedisPrefix() string {
	return GetEnv("REDIS_PREFIX", "signature:session:")
}
