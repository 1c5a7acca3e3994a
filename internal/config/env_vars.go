package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	portEnvVar     = "PORT"
	appNameVar     = "APP_NAME"
	baseURLVar     = "BASE_URL"
	envVar         = "ENV"
	logLevelVar    = "LOG_LEVEL"
	sentryDSNVar   = "SENTRY_DSN"
	defaultAppName = "Signature Studio"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, defaultAppName)
}

func (EnvVars) GetEnv() string {
	return GetEnv(envVar, "DEV")
}

// GetBaseURL returns the public origin of the application (e.g. "https://signature.example.com").
// Sign-in redirects are always resolved inside this origin.
func (EnvVars) GetBaseURL() string {
	return strings.TrimRight(os.Getenv(baseURLVar), "/")
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

func (EnvVars) GetSentryDSN() string {
	return os.Getenv(sentryDSNVar)
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvInt returns the int value of the environment variable or the default if unset or invalid.
func GetEnvInt(envVar string, defaultValue int) int {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return i
}

// GetEnvBool returns true for "1", "true", "yes" (any case).
func GetEnvBool(envVar string, defaultValue bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(envVar)))
	switch value {
	case "":
		return defaultValue
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// GetEnvDuration returns the duration value of the environment variable or the default if unset or invalid.
func GetEnvDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
