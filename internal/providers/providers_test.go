package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"musebox/internal/models"
	"musebox/internal/shared"
)

func testAuth() models.Auth {
	return models.Auth{Token: oauth2.Token{AccessToken: "test-token", Expiry: time.Now().Add(time.Hour)}}
}

func TestFileTreeProvider_ListFolder(t *testing.T) {
	var gotAuth, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"folders": [{"id": "f2", "name": "B-Sides"}],
			"files": [
				{"id": "x1", "name": "airbag.mp3", "size": 9000000, "mimeType": "audio/mpeg", "downloadUrl": "https://cdn/x1"},
				{"id": "x2", "name": "cover.jpg", "size": 50000, "downloadUrl": "https://cdn/x2"}
			]
		}`))
	}))
	defer server.Close()

	p := NewFileTreeProvider(context.Background(), "drive", server.URL, testAuth())
	listing, err := p.ListFolder(context.Background(), models.Folder{ID: "f1", Name: "Music"})
	if err != nil {
		t.Fatalf("ListFolder() error = %v", err)
	}

	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
	if gotPath != "/folders/f1" {
		t.Errorf("path = %q, want /folders/f1", gotPath)
	}

	if len(listing.Folders) != 1 || listing.Folders[0].ID != "f2" {
		t.Errorf("Folders = %+v", listing.Folders)
	}
	if len(listing.Files) != 2 {
		t.Fatalf("got %d files, want 2", len(listing.Files))
	}
	file := listing.Files[0]
	if file.Name != "airbag.mp3" || file.Size != 9000000 || file.MimeType != "audio/mpeg" || file.DownloadURL != "https://cdn/x1" {
		t.Errorf("file = %+v", file)
	}
}

func TestFileTreeProvider_FolderNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	p := NewFileTreeProvider(context.Background(), "drive", server.URL, testAuth())
	_, err := p.ListFolder(context.Background(), models.Folder{ID: "missing"})
	if !errors.Is(err, shared.ErrFolderNotFound) {
		t.Errorf("ListFolder() error = %v, want ErrFolderNotFound", err)
	}
}

func TestFileTreeProvider_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	p := NewFileTreeProvider(context.Background(), "drive", server.URL, testAuth())
	_, err := p.ListFolder(context.Background(), models.Folder{ID: "f1"})
	if !errors.Is(err, shared.ErrProviderGateway) {
		t.Errorf("ListFolder() error = %v, want ErrProviderGateway", err)
	}
}

func TestLibraryAPIProvider_ListAlbums(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"items": [{
				"id": "a1",
				"name": "Blue",
				"artistName": "Joni Mitchell",
				"coverUrl": "https://img/blue.jpg",
				"releaseYear": 1971,
				"genres": ["Folk"],
				"tracks": [
					{"name": "River", "trackNumber": 2, "durationSeconds": 244, "resource": "spotify:track:river", "secondaryArtists": ["James Taylor"]}
				]
			}],
			"nextOffset": 25
		}`))
	}))
	defer server.Close()

	p := NewLibraryAPIProvider(context.Background(), "music", server.URL, testAuth())
	page, err := p.ListAlbums(context.Background(), 0, 25)
	if err != nil {
		t.Fatalf("ListAlbums() error = %v", err)
	}

	if gotQuery != "offset=0&limit=25" {
		t.Errorf("query = %q, want offset=0&limit=25", gotQuery)
	}
	if page.NextOffset == nil || *page.NextOffset != 25 {
		t.Errorf("NextOffset = %v, want 25", page.NextOffset)
	}
	if len(page.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(page.Items))
	}

	album := page.Items[0]
	if album.Name != "Blue" || album.ArtistName != "Joni Mitchell" || album.ReleaseYear != 1971 {
		t.Errorf("album = %+v", album)
	}
	if len(album.Tracks) != 1 || album.Tracks[0].SecondaryArtists[0] != "James Taylor" {
		t.Errorf("tracks = %+v", album.Tracks)
	}
}

func TestLibraryAPIProvider_ClampsLimit(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"items": []}`))
	}))
	defer server.Close()

	p := NewLibraryAPIProvider(context.Background(), "music", server.URL, testAuth())
	if _, err := p.ListAlbums(context.Background(), 0, 500); err != nil {
		t.Fatalf("ListAlbums() error = %v", err)
	}
	if gotQuery != "offset=0&limit=50" {
		t.Errorf("query = %q, want the limit clamped to 50", gotQuery)
	}

	if _, err := p.ListAlbums(context.Background(), 0, 0); err != nil {
		t.Fatalf("ListAlbums() error = %v", err)
	}
	if gotQuery != "offset=0&limit=50" {
		t.Errorf("query = %q, want the zero limit defaulted to 50", gotQuery)
	}
}

func TestLibraryAPIProvider_LastPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": []}`))
	}))
	defer server.Close()

	p := NewLibraryAPIProvider(context.Background(), "music", server.URL, testAuth())
	page, err := p.ListAlbums(context.Background(), 100, 50)
	if err != nil {
		t.Fatalf("ListAlbums() error = %v", err)
	}
	if page.NextOffset != nil {
		t.Errorf("NextOffset = %v, want nil on the final page", *page.NextOffset)
	}
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	info := models.ProviderInfo{ID: "p1", Name: "Drive"}

	full := NewRegistry(shared.ProvidersConfig{
		FileBaseURL:    "https://files.example.com",
		LibraryBaseURL: "https://api.example.com",
	})
	if _, err := full.FileProvider(ctx, info, testAuth()); err != nil {
		t.Errorf("FileProvider() error = %v", err)
	}
	if _, err := full.LibraryProvider(ctx, info, testAuth()); err != nil {
		t.Errorf("LibraryProvider() error = %v", err)
	}

	empty := NewRegistry(shared.ProvidersConfig{})
	if _, err := empty.FileProvider(ctx, info, testAuth()); !errors.Is(err, shared.ErrProviderNotFound) {
		t.Errorf("FileProvider() error = %v, want ErrProviderNotFound", err)
	}
	if _, err := empty.LibraryProvider(ctx, info, testAuth()); !errors.Is(err, shared.ErrProviderNotFound) {
		t.Errorf("LibraryProvider() error = %v, want ErrProviderNotFound", err)
	}
}
