package engine

import (
	"context"
	"fmt"
	"testing"

	"musebox/internal/models"
	"musebox/internal/providers"
)

func TestNormalizer_AddFileDefaults(t *testing.T) {
	n := NewNormalizer(newMemLibrary(), "p1")

	if err := n.AddFile(context.Background(), models.TrackMetadata{}, "u/track"); err != nil {
		t.Fatalf("AddFile() error = %v", err)
	}

	artists, albums := n.Result()
	if len(artists) != 1 || artists[0].Name != "Unknown Artist" {
		t.Errorf("artists = %+v, want one Unknown Artist", artists)
	}
	if len(albums) != 1 || albums[0].Name != "Unknown Album" {
		t.Fatalf("albums = %+v, want one Unknown Album", albums)
	}

	track := albums[0].Tracks[0]
	if track.Name != "Unknown Title" {
		t.Errorf("track name = %q, want Unknown Title", track.Name)
	}
	if track.TrackNumber != 1 {
		t.Errorf("track number = %d, want 1", track.TrackNumber)
	}
	if track.Resource != "u/track" {
		t.Errorf("track resource = %q, want u/track", track.Resource)
	}
	if track.ID == "" || track.MainArtistID != artists[0].ID {
		t.Errorf("track ids not wired: %+v", track)
	}
}

func TestNormalizer_AlbumDedupAndOrdering(t *testing.T) {
	n := NewNormalizer(newMemLibrary(), "p1")
	ctx := context.Background()

	for _, number := range []int{3, 1, 2} {
		meta := models.TrackMetadata{
			Title:       fmt.Sprintf("Track %d", number),
			Artists:     []string{"Radiohead"},
			Album:       "OK Computer",
			TrackNumber: number,
		}
		if err := n.AddFile(ctx, meta, "u/t"); err != nil {
			t.Fatalf("AddFile() error = %v", err)
		}
	}

	artists, albums := n.Result()
	if len(artists) != 1 {
		t.Errorf("got %d artists, want 1", len(artists))
	}
	if len(albums) != 1 {
		t.Fatalf("got %d albums, want 1", len(albums))
	}

	tracks := albums[0].Tracks
	if len(tracks) != 3 {
		t.Fatalf("got %d tracks, want 3", len(tracks))
	}
	for i, track := range tracks {
		if track.TrackNumber != i+1 {
			t.Errorf("tracks[%d].TrackNumber = %d, want %d", i, track.TrackNumber, i+1)
		}
	}
	if n.TrackCount() != 3 {
		t.Errorf("TrackCount() = %d, want 3", n.TrackCount())
	}
}

func TestNormalizer_DuplicateTrackIgnored(t *testing.T) {
	n := NewNormalizer(newMemLibrary(), "p1")
	ctx := context.Background()

	meta := models.TrackMetadata{Title: "River", Artists: []string{"Joni Mitchell"}, Album: "Blue", TrackNumber: 2}
	for i := 0; i < 2; i++ {
		if err := n.AddFile(ctx, meta, "u/river"); err != nil {
			t.Fatalf("AddFile() error = %v", err)
		}
	}

	if n.TrackCount() != 1 {
		t.Errorf("TrackCount() = %d, want 1 after duplicate add", n.TrackCount())
	}
}

func TestNormalizer_GenreMerge(t *testing.T) {
	n := NewNormalizer(newMemLibrary(), "p1")
	ctx := context.Background()

	first := models.TrackMetadata{
		Title: "A", Artists: []string{"X"}, Album: "Y",
		Genres: []string{"Rock, Pop"},
	}
	second := models.TrackMetadata{
		Title: "B", Artists: []string{"X"}, Album: "Y", TrackNumber: 2,
		Genres: []string{"Pop", "Jazz"},
	}
	if err := n.AddFile(ctx, first, "u/a"); err != nil {
		t.Fatalf("AddFile() error = %v", err)
	}
	if err := n.AddFile(ctx, second, "u/b"); err != nil {
		t.Fatalf("AddFile() error = %v", err)
	}

	_, albums := n.Result()
	want := []string{"Rock", "Pop", "Jazz"}
	got := albums[0].Genres
	if len(got) != len(want) {
		t.Fatalf("genres = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("genres[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNormalizer_ReusesPersistedArtist(t *testing.T) {
	library := newMemLibrary()
	library.artists["Radiohead"] = models.Artist{ID: "persisted-artist", Name: "Radiohead"}

	n := NewNormalizer(library, "p1")
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		meta := models.TrackMetadata{Title: "T", Artists: []string{"Radiohead"}, Album: "Kid A", TrackNumber: i}
		if err := n.AddFile(ctx, meta, "u/t"); err != nil {
			t.Fatalf("AddFile() error = %v", err)
		}
	}

	artists, albums := n.Result()
	if len(artists) != 1 || artists[0].ID != "persisted-artist" {
		t.Errorf("artists = %+v, want the persisted record", artists)
	}
	if albums[0].ArtistID != "persisted-artist" {
		t.Errorf("album artist id = %q, want persisted-artist", albums[0].ArtistID)
	}
	// The second file hits the accumulator, not the database.
	if library.findArtistCalls != 1 {
		t.Errorf("FindArtistByName called %d times, want 1", library.findArtistCalls)
	}
}

func TestNormalizer_ReusesPersistedAlbum(t *testing.T) {
	library := newMemLibrary()
	library.artists["Radiohead"] = models.Artist{ID: "ar1", Name: "Radiohead"}
	library.albums["Kid A|ar1"] = models.Album{
		ID: "al1", Name: "Kid A", ArtistID: "ar1", ProviderID: "p1",
		Genres: []string{"Electronic"},
	}

	n := NewNormalizer(library, "p1")
	meta := models.TrackMetadata{Title: "Idioteque", Artists: []string{"Radiohead"}, Album: "Kid A", TrackNumber: 8}
	if err := n.AddFile(context.Background(), meta, "u/t"); err != nil {
		t.Fatalf("AddFile() error = %v", err)
	}

	_, albums := n.Result()
	if albums[0].ID != "al1" {
		t.Errorf("album id = %q, want the persisted al1", albums[0].ID)
	}
	if len(albums[0].Genres) != 1 || albums[0].Genres[0] != "Electronic" {
		t.Errorf("persisted genres lost: %v", albums[0].Genres)
	}
	if len(albums[0].Tracks) != 1 {
		t.Errorf("new track not folded into persisted album")
	}
}

func TestNormalizer_AddAlbumSecondaryArtists(t *testing.T) {
	n := NewNormalizer(newMemLibrary(), "p1")

	item := providers.AlbumWithTracks{
		ID:         "remote-1",
		Name:       "Watch the Throne",
		ArtistName: "JAY-Z",
		Tracks: []providers.APITrack{
			{Name: "No Church in the Wild", TrackNumber: 1, SecondaryArtists: []string{"Kanye West", "Frank Ocean"}},
		},
	}
	if err := n.AddAlbum(context.Background(), item); err != nil {
		t.Fatalf("AddAlbum() error = %v", err)
	}

	artists, albums := n.Result()
	if len(artists) != 3 {
		t.Fatalf("got %d artists, want main plus two secondary credits", len(artists))
	}

	track := albums[0].Tracks[0]
	if len(track.SecondaryArtistIDs) != 2 {
		t.Fatalf("secondary artist ids = %v, want 2", track.SecondaryArtistIDs)
	}
	minted := map[string]bool{}
	for _, a := range artists {
		minted[a.ID] = true
	}
	for _, id := range track.SecondaryArtistIDs {
		if !minted[id] {
			t.Errorf("secondary id %q not present in result artists", id)
		}
	}
}

func TestNormalizer_AddAlbumDefaults(t *testing.T) {
	n := NewNormalizer(newMemLibrary(), "p1")

	item := providers.AlbumWithTracks{
		ID:     "remote-2",
		Tracks: []providers.APITrack{{}},
	}
	if err := n.AddAlbum(context.Background(), item); err != nil {
		t.Fatalf("AddAlbum() error = %v", err)
	}

	_, albums := n.Result()
	if albums[0].Name != "Unknown Album" {
		t.Errorf("album name = %q, want Unknown Album", albums[0].Name)
	}
	track := albums[0].Tracks[0]
	if track.Name != "Unknown Title" || track.TrackNumber != 1 {
		t.Errorf("track defaults not applied: %+v", track)
	}
}
