package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"musebox/internal/models"
	"musebox/internal/shared"
)

type libraryTrack struct {
	Name             string   `json:"name"`
	TrackNumber      int      `json:"trackNumber"`
	DurationSeconds  int      `json:"durationSeconds"`
	Resource         string   `json:"resource"`
	SecondaryArtists []string `json:"secondaryArtists,omitempty"`
}

type libraryAlbum struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ArtistName  string         `json:"artistName"`
	CoverURL    string         `json:"coverUrl,omitempty"`
	ReleaseYear int            `json:"releaseYear,omitempty"`
	Genres      []string       `json:"genres,omitempty"`
	Tracks      []libraryTrack `json:"tracks"`
}

type libraryPage struct {
	Items      []libraryAlbum `json:"items"`
	NextOffset *int           `json:"nextOffset,omitempty"`
}

// LibraryAPIProvider implements [LibraryProvider] against a JSON album feed.
type LibraryAPIProvider struct {
	name       string
	baseURL    string
	httpClient *http.Client
}

// NewLibraryAPIProvider creates a provider handle whose requests carry the
// given token as a bearer credential.
func NewLibraryAPIProvider(ctx context.Context, name, baseURL string, auth models.Auth) *LibraryAPIProvider {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&auth.Token))
	client.Timeout = 30 * time.Second

	return &LibraryAPIProvider{
		name:       name,
		baseURL:    baseURL,
		httpClient: client,
	}
}

// Name returns the provider's display name.
func (p *LibraryAPIProvider) Name() string {
	return p.name
}

// ListAlbums fetches one page of albums-with-tracks starting at offset.
func (p *LibraryAPIProvider) ListAlbums(ctx context.Context, offset, limit int) (*AlbumPage, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 50 {
		limit = 50
	}

	endpoint := fmt.Sprintf("%s/albums?offset=%d&limit=%d", p.baseURL, offset, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrProviderGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", shared.ErrProviderGateway, resp.StatusCode)
	}

	var page libraryPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("%w: decoding page: %v", shared.ErrProviderGateway, err)
	}

	out := &AlbumPage{NextOffset: page.NextOffset}
	for _, a := range page.Items {
		album := AlbumWithTracks{
			ID:          a.ID,
			Name:        a.Name,
			ArtistName:  a.ArtistName,
			CoverURL:    a.CoverURL,
			ReleaseYear: a.ReleaseYear,
			Genres:      a.Genres,
		}
		for _, t := range a.Tracks {
			album.Tracks = append(album.Tracks, APITrack{
				Name:             t.Name,
				TrackNumber:      t.TrackNumber,
				DurationSeconds:  t.DurationSeconds,
				Resource:         t.Resource,
				SecondaryArtists: t.SecondaryArtists,
			})
		}
		out.Items = append(out.Items, album)
	}
	return out, nil
}
