package engine

import (
	"context"
	"fmt"

	"musebox/internal/models"
	"musebox/internal/providers"
	"musebox/internal/shared"
)

// Fallbacks applied when extracted metadata leaves a field empty.
const (
	unknownArtist = "Unknown Artist"
	unknownAlbum  = "Unknown Album"
	unknownTitle  = "Unknown Title"
)

type albumKey struct {
	name     string
	artistID string
}

// Normalizer resolves raw metadata into a consistent graph of unique
// Artist/Album/Track records.
//
// Both pipelines share one implementation: lookups go first to the
// persisted library, then to this run's in-progress accumulator, and only
// then synthesize a fresh record. The accumulator is discarded with the
// Normalizer at the end of a run.
//
// A Normalizer is confined to a single pipeline goroutine and is not safe
// for concurrent use.
type Normalizer struct {
	library    Library
	providerID string

	artists     map[string]*models.Artist
	secondaries []*models.Artist
	albums      map[albumKey]*models.Album
	order       []albumKey // Album insertion order, for deterministic output
}

// NewNormalizer creates a Normalizer for one sync run.
func NewNormalizer(library Library, providerID string) *Normalizer {
	return &Normalizer{
		library:    library,
		providerID: providerID,
		artists:    make(map[string]*models.Artist),
		albums:     make(map[albumKey]*models.Album),
	}
}

// AddFile folds one extracted file into the accumulator.
//
// Metadata gaps never abort normalization: a missing artist becomes
// "Unknown Artist", a missing title "Unknown Title", a missing track
// number 1, a missing duration 0, and a missing genre list stays empty.
func (n *Normalizer) AddFile(ctx context.Context, meta models.TrackMetadata, resource string) error {
	artistName := unknownArtist
	if len(meta.Artists) > 0 && meta.Artists[0] != "" {
		artistName = meta.Artists[0]
	}

	artist, err := n.resolveArtist(ctx, artistName)
	if err != nil {
		return err
	}

	albumName := meta.Album
	if albumName == "" {
		albumName = unknownAlbum
	}

	title := meta.Title
	if title == "" {
		title = unknownTitle
	}
	number := meta.TrackNumber
	if number <= 0 {
		number = 1
	}

	track := models.Track{
		ID:              shared.GenerateID(),
		MainArtistID:    artist.ID,
		Name:            title,
		TrackNumber:     number,
		Resource:        resource,
		DurationSeconds: meta.DurationSeconds,
	}

	album, err := n.resolveAlbum(ctx, albumName, artist.ID, func() *models.Album {
		a := &models.Album{
			ID:         shared.GenerateID(),
			Name:       albumName,
			ArtistID:   artist.ID,
			ProviderID: n.providerID,
			Genres:     []string{},
		}
		if meta.EmbeddedCover != "" {
			cover := meta.EmbeddedCover
			a.EmbeddedCover = &cover
		}
		if meta.Year > 0 {
			year := meta.Year
			a.ReleaseYear = &year
		}
		return a
	})
	if err != nil {
		return err
	}

	album.AddTrack(track)
	album.MergeGenres(meta.Genres)
	return nil
}

// AddAlbum folds one library-API album-with-tracks item into the accumulator.
//
// The main artist goes through the same find-or-create path as the file
// pipeline. Secondary artists keep their own freshly minted ids and are not
// deduplicated against the main-artist resolution.
func (n *Normalizer) AddAlbum(ctx context.Context, item providers.AlbumWithTracks) error {
	artistName := item.ArtistName
	if artistName == "" {
		artistName = unknownArtist
	}

	artist, err := n.resolveArtist(ctx, artistName)
	if err != nil {
		return err
	}

	albumName := item.Name
	if albumName == "" {
		albumName = unknownAlbum
	}

	album, err := n.resolveAlbum(ctx, albumName, artist.ID, func() *models.Album {
		a := &models.Album{
			ID:         shared.GenerateID(),
			Name:       albumName,
			ArtistID:   artist.ID,
			ProviderID: n.providerID,
			Genres:     []string{},
		}
		if item.CoverURL != "" {
			cover := item.CoverURL
			a.EmbeddedCover = &cover
		}
		if item.ReleaseYear > 0 {
			year := item.ReleaseYear
			a.ReleaseYear = &year
		}
		return a
	})
	if err != nil {
		return err
	}

	for _, t := range item.Tracks {
		title := t.Name
		if title == "" {
			title = unknownTitle
		}
		number := t.TrackNumber
		if number <= 0 {
			number = 1
		}

		var secondary []string
		for _, name := range t.SecondaryArtists {
			sec := n.mintSecondaryArtist(name)
			secondary = append(secondary, sec.ID)
		}

		album.AddTrack(models.Track{
			ID:                 shared.GenerateID(),
			MainArtistID:       artist.ID,
			SecondaryArtistIDs: secondary,
			Name:               title,
			TrackNumber:        number,
			Resource:           t.Resource,
			DurationSeconds:    t.DurationSeconds,
		})
	}

	album.MergeGenres(item.Genres)
	return nil
}

// Result returns the accumulated artists and albums. Albums come back in
// first-appearance order.
func (n *Normalizer) Result() ([]models.Artist, []models.Album) {
	artists := make([]models.Artist, 0, len(n.artists)+len(n.secondaries))
	for _, a := range n.artists {
		artists = append(artists, *a)
	}
	for _, a := range n.secondaries {
		artists = append(artists, *a)
	}

	albums := make([]models.Album, 0, len(n.order))
	for _, key := range n.order {
		albums = append(albums, *n.albums[key])
	}
	return artists, albums
}

// TrackCount returns the number of tracks across all accumulated albums.
func (n *Normalizer) TrackCount() int {
	total := 0
	for _, album := range n.albums {
		total += len(album.Tracks)
	}
	return total
}

// resolveArtist finds the artist by exact name in the persisted library,
// then in the accumulator, and synthesizes one otherwise.
func (n *Normalizer) resolveArtist(ctx context.Context, name string) (*models.Artist, error) {
	if artist, ok := n.artists[name]; ok {
		return artist, nil
	}

	persisted, err := n.library.FindArtistByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("artist lookup failed: %w", err)
	}
	if persisted != nil {
		n.artists[name] = persisted
		return persisted, nil
	}

	artist := &models.Artist{ID: shared.GenerateID(), Name: name}
	n.artists[name] = artist
	return artist, nil
}

// resolveAlbum finds the album by (name, artist id) in the persisted
// library, then in the accumulator, calling synth for a fresh record
// otherwise.
func (n *Normalizer) resolveAlbum(ctx context.Context, name, artistID string, synth func() *models.Album) (*models.Album, error) {
	key := albumKey{name: name, artistID: artistID}
	if album, ok := n.albums[key]; ok {
		return album, nil
	}

	persisted, err := n.library.FindAlbum(ctx, name, artistID)
	if err != nil {
		return nil, fmt.Errorf("album lookup failed: %w", err)
	}

	var album *models.Album
	if persisted != nil {
		album = persisted
	} else {
		album = synth()
	}

	n.albums[key] = album
	n.order = append(n.order, key)
	return album, nil
}

// mintSecondaryArtist creates an artist record for a secondary credit.
// Secondary credits are intentionally not merged into the main-artist map.
func (n *Normalizer) mintSecondaryArtist(name string) *models.Artist {
	artist := &models.Artist{ID: shared.GenerateID(), Name: name}
	n.secondaries = append(n.secondaries, artist)
	return artist
}
