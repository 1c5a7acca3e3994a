package config

import (
	"os"
	"time"
)

type Smtp struct{}

var _ SmtpConfig = Smtp{}

func (Smtp) GetSmtpHost() string {
	return GetEnv("SMTP_HOST", "smtp.office365.com")
}

func (Smtp) GetSmtpPort() string {
	return GetEnv("SMTP_PORT", "587")
}

func (Smtp) GetSmtpUser() string {
	return os.Getenv("SMTP_USER")
}

func (Smtp) GetSmtpPassword() string {
	return os.Getenv("SMTP_PASSWORD")
}

// GetSmtpFrom falls back to the SMTP user, which is what most relays accept as envelope sender.
func (s Smtp) GetSmtpFrom() string {
	return GetEnv("SMTP_FROM", s.GetSmtpUser())
}

func (Smtp) GetSmtpFromName() string {
	return GetEnv("SMTP_FROM_NAME", defaultAppName)
}

func (Smtp) GetSmtpImplicitTLS() bool {
	return GetEnvBool("SMTP_IMPLICIT_TLS", false)
}

// GetSmtpStartTLS requires STARTTLS on plain connections. Only turn it off for local relays.
func (Smtp) GetSmtpStartTLS() bool {
	return GetEnvBool("SMTP_STARTTLS", true)
}

func (Smtp) GetSmtpTimeout() time.Duration {
	return GetEnvDuration("SMTP_TIMEOUT", 30*time.Second)
}
