package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"musebox/internal/models"
	"musebox/internal/providers"
	"musebox/internal/shared"
)

// pageProvider serves canned album pages keyed by offset.
type pageProvider struct {
	mu      sync.Mutex
	pages   map[int]*providers.AlbumPage
	errs    map[int]error
	offsets []int
}

func (p *pageProvider) ListAlbums(ctx context.Context, offset, limit int) (*providers.AlbumPage, error) {
	p.mu.Lock()
	p.offsets = append(p.offsets, offset)
	err := p.errs[offset]
	page := p.pages[offset]
	p.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if page != nil {
		return page, nil
	}
	return &providers.AlbumPage{}, nil
}

func (p *pageProvider) Name() string { return "pages" }

func apiArgs(providerID string) models.APIStartArgs {
	return models.APIStartArgs{
		Info: models.ProviderInfo{ID: providerID, Name: providerID},
		Auth: validAuth(),
	}
}

func TestAPIPipeline_Pagination(t *testing.T) {
	next := 2
	provider := &pageProvider{
		pages: map[int]*providers.AlbumPage{
			0: {
				Items: []providers.AlbumWithTracks{
					{ID: "a1", Name: "Blue", ArtistName: "Joni Mitchell", Tracks: []providers.APITrack{
						{Name: "All I Want", TrackNumber: 1},
						{Name: "River", TrackNumber: 2},
					}},
					{ID: "a2", Name: "Hejira", ArtistName: "Joni Mitchell", Tracks: []providers.APITrack{
						{Name: "Coyote", TrackNumber: 1},
					}},
				},
				NextOffset: &next,
			},
			2: {
				Items: []providers.AlbumWithTracks{
					{ID: "a3", Name: "Mingus", ArtistName: "Joni Mitchell", Tracks: []providers.APITrack{
						{Name: "Sweet Sucker Dance", TrackNumber: 1},
					}},
				},
			},
		},
	}
	library := newMemLibrary()
	reporter := &recordReporter{}

	pipeline := NewAPIPipeline(APIPipelineOpts{
		Provider: provider,
		Library:  library,
		Reporter: reporter,
		PageSize: 2,
	})

	if err := pipeline.Run(context.Background(), apiArgs("api1")); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if want := []int{0, 2}; len(provider.offsets) != 2 || provider.offsets[0] != want[0] || provider.offsets[1] != want[1] {
		t.Errorf("page offsets = %v, want %v", provider.offsets, want)
	}

	synced := reporter.find(models.KindSynced).(models.Synced)
	if synced.SyncedTracks != 4 {
		t.Errorf("SyncedTracks = %d, want 4", synced.SyncedTracks)
	}
	if synced.TracksWithError != 0 {
		t.Errorf("TracksWithError = %d, want 0", synced.TracksWithError)
	}

	if len(library.savedAlbums) != 3 {
		t.Errorf("saved %d albums, want 3", len(library.savedAlbums))
	}
	// Three albums share one artist after deduplication.
	if len(library.savedArtists) != 1 {
		t.Errorf("saved %d artists, want 1", len(library.savedArtists))
	}
}

func TestAPIPipeline_PageFailureAborts(t *testing.T) {
	next := 2
	provider := &pageProvider{
		pages: map[int]*providers.AlbumPage{
			0: {
				Items:      []providers.AlbumWithTracks{{ID: "a1", Name: "Blue", ArtistName: "Joni Mitchell"}},
				NextOffset: &next,
			},
		},
		errs: map[int]error{2: errors.New("502 bad gateway")},
	}
	library := newMemLibrary()
	reporter := &recordReporter{}

	pipeline := NewAPIPipeline(APIPipelineOpts{
		Provider: provider,
		Library:  library,
		Reporter: reporter,
	})

	err := pipeline.Run(context.Background(), apiArgs("api1"))
	if err == nil {
		t.Fatal("Run() error = nil, want page failure")
	}

	errored, ok := reporter.find(models.KindErrored).(models.Errored)
	if !ok {
		t.Fatal("no errored status reported")
	}
	if !errors.Is(errored.Err, shared.ErrProviderGateway) {
		t.Errorf("Errored.Err = %v, want ErrProviderGateway", errored.Err)
	}
	if library.saves() != 0 {
		t.Errorf("partial page results were persisted")
	}
	if s := reporter.find(models.KindSynced); s != nil {
		t.Errorf("got synced status after page failure: %+v", s)
	}
}
