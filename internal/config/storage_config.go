package config

import (
	"os"
	"strings"
)

const (
	TemplateFallbackDegrade = "degrade"
	TemplateFallbackStrict  = "strict"
)

type Storage struct{}

var _ StorageConfig = Storage{}

// GetBlobEndpoint returns the blob service endpoint (e.g. "https://account.blob.core.windows.net").
func (Storage) GetBlobEndpoint() string {
	return strings.TrimRight(os.Getenv("BLOB_ENDPOINT"), "/")
}

func (Storage) GetBlobContainer() string {
	return GetEnv("BLOB_CONTAINER", "templates")
}

func (Storage) GetBlobSASToken() string {
	return strings.TrimPrefix(os.Getenv("BLOB_SAS_TOKEN"), "?")
}

// GetBlobUseAAD makes template reads authenticate with the application's Entra ID credentials.
func (Storage) GetBlobUseAAD() bool {
	return GetEnvBool("BLOB_USE_AAD", false)
}

func (Storage) GetTemplateFallbackMode() string {
	return strings.ToLower(GetEnv("TEMPLATE_FALLBACK", TemplateFallbackDegrade))
}
