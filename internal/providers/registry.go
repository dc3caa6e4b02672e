package providers

import (
	"context"
	"fmt"

	"musebox/internal/models"
	"musebox/internal/shared"
)

// Registry is the default [Factory], constructing HTTP-backed provider
// handles from configured gateway endpoints.
type Registry struct {
	fileBaseURL    string
	libraryBaseURL string
}

// NewRegistry creates a Registry from the configured provider endpoints.
func NewRegistry(cfg shared.ProvidersConfig) *Registry {
	return &Registry{
		fileBaseURL:    cfg.FileBaseURL,
		libraryBaseURL: cfg.LibraryBaseURL,
	}
}

// FileProvider resolves a file-tree handle for the session.
func (r *Registry) FileProvider(ctx context.Context, info models.ProviderInfo, auth models.Auth) (FileProvider, error) {
	if r.fileBaseURL == "" {
		return nil, fmt.Errorf("%w: no file gateway configured for %s", shared.ErrProviderNotFound, info.ID)
	}
	return NewFileTreeProvider(ctx, info.Name, r.fileBaseURL, auth), nil
}

// LibraryProvider resolves a library API handle for the session.
func (r *Registry) LibraryProvider(ctx context.Context, info models.ProviderInfo, auth models.Auth) (LibraryProvider, error) {
	if r.libraryBaseURL == "" {
		return nil, fmt.Errorf("%w: no library endpoint configured for %s", shared.ErrProviderNotFound, info.ID)
	}
	return NewLibraryAPIProvider(ctx, info.Name, r.libraryBaseURL, auth), nil
}
