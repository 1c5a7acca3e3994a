package config

import (
	"net/url"
	"regexp"

	"github.com/jrsteele09/signature-studio/internal/errors"
)

const minSessionSecretLength = 32

var hexColourRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Validate checks the settings the server cannot start without.
// Authenticated routes must never be served with a missing secret or base URL.
func Validate(c Config) error {
	cfgErr := &errors.ConfigurationError{}

	required := []struct {
		name  string
		value string
	}{
		{"AZURE_AD_CLIENT_ID", c.GetIdentityClientID()},
		{"AZURE_AD_CLIENT_SECRET", c.GetIdentityClientSecret()},
		{"AZURE_AD_TENANT_ID", c.GetIdentityTenantID()},
		{"SESSION_SECRET", c.GetSessionSecret()},
		{"BASE_URL", c.GetBaseURL()},
	}
	for _, r := range required {
		if r.value == "" {
			cfgErr.Missing = append(cfgErr.Missing, r.name)
		}
	}

	if secret := c.GetSessionSecret(); secret != "" && len(secret) < minSessionSecretLength {
		cfgErr.Invalid = append(cfgErr.Invalid, "SESSION_SECRET (must be at least 32 characters)")
	}

	if base := c.GetBaseURL(); base != "" {
		u, err := url.Parse(base)
		switch {
		case err != nil || u.Scheme == "" || u.Host == "":
			cfgErr.Invalid = append(cfgErr.Invalid, "BASE_URL (must be an absolute URL)")
		case (u.Path != "" && u.Path != "/") || u.RawQuery != "" || u.Fragment != "":
			// Routes are mounted at the root of the host
			cfgErr.Invalid = append(cfgErr.Invalid, "BASE_URL (must be an origin without a path)")
		}
	}

	if !hexColourRe.MatchString(c.GetAccentColor()) {
		cfgErr.Invalid = append(cfgErr.Invalid, "SIGNATURE_ACCENT (must be #rrggbb)")
	}

	switch c.GetSessionStore() {
	case SessionStoreMemory:
	case SessionStoreRedis:
		if c.GetRedisAddr() == "" {
			cfgErr.Missing = append(cfgErr.Missing, "REDIS_ADDR")
		}
	default:
		cfgErr.Invalid = append(cfgErr.Invalid, "SESSION_STORE (memory or redis)")
	}

	switch c.GetTemplateFallbackMode() {
	case TemplateFallbackDegrade, TemplateFallbackStrict:
	default:
		cfgErr.Invalid = append(cfgErr.Invalid, "TEMPLATE_FALLBACK (degrade or strict)")
	}

	if len(cfgErr.Missing) > 0 || len(cfgErr.Invalid) > 0 {
		return cfgErr
	}
	return nil
}
