// package providers defines adapter interfaces for external content providers
//
// File-hosting services expose a folder tree; music-API services expose a
// paginated album library.
package providers

import (
	"context"

	"musebox/internal/models"
)

// Listing is the content of one folder in a file-based provider's tree.
type Listing struct {
	Folders []models.Folder
	Files   []models.File
}

// FileProvider is a provider exposing a file-system-like tree.
type FileProvider interface {
	// ListRoot lists the folders at the provider's root.
	ListRoot(ctx context.Context) ([]models.Folder, error)

	// ListFolder lists the immediate children of a folder.
	ListFolder(ctx context.Context, folder models.Folder) (*Listing, error)

	// Name returns the provider's display name.
	Name() string
}

// AlbumWithTracks is one item of a library provider's paginated album feed.
type AlbumWithTracks struct {
	ID          string
	Name        string
	ArtistName  string
	CoverURL    string
	ReleaseYear int
	Genres      []string
	Tracks      []APITrack
}

// APITrack is a track as reported by a library API.
type APITrack struct {
	Name             string
	TrackNumber      int
	DurationSeconds  int
	Resource         string
	SecondaryArtists []string
}

// AlbumPage is one page of a library provider's album feed.
//
// NextOffset is nil on the final page.
type AlbumPage struct {
	Items      []AlbumWithTracks
	NextOffset *int
}

// LibraryProvider is a provider exposing a remote library API.
type LibraryProvider interface {
	// ListAlbums fetches one page of albums-with-tracks starting at offset.
	ListAlbums(ctx context.Context, offset, limit int) (*AlbumPage, error)

	// Name returns the provider's display name.
	Name() string
}

// Factory resolves live provider handles from session credentials.
//
// The coordinator calls it once per sync start; a resolution failure is
// reported as an errored status, never propagated.
type Factory interface {
	FileProvider(ctx context.Context, info models.ProviderInfo, auth models.Auth) (FileProvider, error)
	LibraryProvider(ctx context.Context, info models.ProviderInfo, auth models.Auth) (LibraryProvider, error)
}
