package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"musebox/internal/models"
	"musebox/internal/shared"
)

type gatewayFolder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type gatewayFile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	MimeType    string `json:"mimeType,omitempty"`
	DownloadURL string `json:"downloadUrl"`
}

type gatewayListing struct {
	Folders []gatewayFolder `json:"folders"`
	Files   []gatewayFile   `json:"files"`
}

// FileTreeProvider implements [FileProvider] against a JSON folder gateway.
type FileTreeProvider struct {
	name       string
	baseURL    string
	httpClient *http.Client
}

// NewFileTreeProvider creates a provider handle whose requests carry the
// given token. The token source is static; refresh is handled upstream.
func NewFileTreeProvider(ctx context.Context, name, baseURL string, auth models.Auth) *FileTreeProvider {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&auth.Token))
	client.Timeout = 30 * time.Second

	return &FileTreeProvider{
		name:       name,
		baseURL:    baseURL,
		httpClient: client,
	}
}

// Name returns the provider's display name.
func (p *FileTreeProvider) Name() string {
	return p.name
}

// ListRoot lists the folders at the gateway root.
func (p *FileTreeProvider) ListRoot(ctx context.Context) ([]models.Folder, error) {
	var listing gatewayListing
	if err := p.doRequest(ctx, "/folders/root", &listing); err != nil {
		return nil, err
	}

	folders := make([]models.Folder, 0, len(listing.Folders))
	for _, f := range listing.Folders {
		folders = append(folders, models.Folder{ID: f.ID, Name: f.Name})
	}
	return folders, nil
}

// ListFolder lists the immediate children of a folder.
func (p *FileTreeProvider) ListFolder(ctx context.Context, folder models.Folder) (*Listing, error) {
	var listing gatewayListing
	endpoint := "/folders/" + url.PathEscape(folder.ID)
	if err := p.doRequest(ctx, endpoint, &listing); err != nil {
		return nil, err
	}

	out := &Listing{
		Folders: make([]models.Folder, 0, len(listing.Folders)),
		Files:   make([]models.File, 0, len(listing.Files)),
	}
	for _, f := range listing.Folders {
		out.Folders = append(out.Folders, models.Folder{ID: f.ID, Name: f.Name})
	}
	for _, f := range listing.Files {
		out.Files = append(out.Files, models.File{
			ID:          f.ID,
			Name:        f.Name,
			Size:        f.Size,
			MimeType:    f.MimeType,
			DownloadURL: f.DownloadURL,
		})
	}
	return out, nil
}

func (p *FileTreeProvider) doRequest(ctx context.Context, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrProviderGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", shared.ErrFolderNotFound, endpoint)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrProviderGateway, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: decoding response: %v", shared.ErrProviderGateway, err)
	}
	return nil
}
