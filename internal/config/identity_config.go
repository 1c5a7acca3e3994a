package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Identity struct{}

var _ IdentityConfig = Identity{}

var defaultScopes = []string{"openid", "profile", "email", "offline_access", "User.Read", "Mail.Send", "MailboxSettings.Read", "Files.ReadWrite"}

func (Identity) GetIdentityClientID() string {
	return os.Getenv("AZURE_AD_CLIENT_ID")
}

func (Identity) GetIdentityClientSecret() string {
	return os.Getenv("AZURE_AD_CLIENT_SECRET")
}

func (Identity) GetIdentityTenantID() string {
	return os.Getenv("AZURE_AD_TENANT_ID")
}

// GetIdentityIssuer returns IDENTITY_ISSUER or the Entra ID v2.0 issuer of the configured tenant.
func (i Identity) GetIdentityIssuer() string {
	if issuer := os.Getenv("IDENTITY_ISSUER"); issuer != "" {
		return strings.TrimRight(issuer, "/")
	}
	return fmt.Sprintf("https://login.microsoftonline.com/%s/v2.0", i.GetIdentityTenantID())
}

func (Identity) GetIdentityScopes() []string {
	raw := os.Getenv("IDENTITY_SCOPES")
	if raw == "" {
		return defaultScopes
	}
	return strings.Fields(strings.ReplaceAll(raw, ",", " "))
}

// GetSignInFlowTimeout bounds the time between leaving for the identity provider and the callback.
func (Identity) GetSignInFlowTimeout() time.Duration {
	return 10 * time.Minute
}
