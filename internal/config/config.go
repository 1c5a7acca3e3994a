package config

import "time"

type Config interface {
	EnvConfig
	CorsConfig
	IdentityConfig
	SessionConfig
	StorageConfig
	SmtpConfig
	GraphConfig
	BrandingConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetBaseURL() string
	GetLogLevel() string
	GetSentryDSN() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type IdentityConfig interface {
	GetIdentityClientID() string
	GetIdentityClientSecret() string
	GetIdentityTenantID() string
	GetIdentityIssuer() string
	GetIdentityScopes() []string
	GetSignInFlowTimeout() time.Duration
}

type SessionConfig interface {
	GetSessionSecret() string
	GetMaxSessionAge() time.Duration
	GetSessionStore() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisPrefix() string
}

type StorageConfig interface {
	GetBlobEndpoint() string
	GetBlobContainer() string
	GetBlobSASToken() string
	GetBlobUseAAD() bool
	GetTemplateFallbackMode() string
}

type SmtpConfig interface {
	GetSmtpHost() string
	GetSmtpPort() string
	GetSmtpUser() string
	GetSmtpPassword() string
	GetSmtpFrom() string
	GetSmtpFromName() string
	GetSmtpImplicitTLS() bool
	GetSmtpStartTLS() bool
	GetSmtpTimeout() time.Duration
}

type BrandingConfig interface {
	GetCompanyName() string
	GetCompanyWebsite() string
	GetAccentColor() string
}

type GraphConfig interface {
	GetGraphBaseURL() string
}

type mainConfig struct {
	EnvVars
	Cors
	Identity
	Session
	Storage
	Smtp
	Graph
	Branding
}

func New() Config {
	return mainConfig{}
}
