package config

import "os"

type Branding struct{}

var _ BrandingConfig = Branding{}

func (Branding) GetCompanyName() string {
	return os.Getenv("SIGNATURE_COMPANY")
}

func (Branding) GetCompanyWebsite() string {
	return os.Getenv("SIGNATURE_WEBSITE")
}

func (Branding) GetAccentColor() string {
	return GetEnv("SIGNATURE_ACCENT", "#0b5cad")
}
