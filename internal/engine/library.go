package engine

import (
	"context"
	"database/sql"
	"fmt"

	"musebox/internal/models"
	"musebox/internal/repositories"
)

// Library is the persistence boundary the pipelines and normalizer depend on.
type Library interface {
	// FindArtistByName returns the persisted artist with the exact name,
	// or (nil, nil) when absent.
	FindArtistByName(ctx context.Context, name string) (*models.Artist, error)

	// FindAlbum returns the persisted album with the exact (name, artist id)
	// pair, or (nil, nil) when absent.
	FindAlbum(ctx context.Context, name, artistID string) (*models.Album, error)

	// SaveSync persists one sync run's artists and albums, flattening the
	// embedded track lists into the tracks table, in a single transaction.
	SaveSync(ctx context.Context, artists []models.Artist, albums []models.Album) error
}

// SQLStore implements [Library] over SQLite.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore creates a SQLStore over an open database handle.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// FindArtistByName looks up an artist by exact name.
func (s *SQLStore) FindArtistByName(ctx context.Context, name string) (*models.Artist, error) {
	return repositories.NewArtistRepository(s.db).FindByName(ctx, name)
}

// FindAlbum looks up an album by exact (name, artist id).
func (s *SQLStore) FindAlbum(ctx context.Context, name, artistID string) (*models.Album, error) {
	return repositories.NewAlbumRepository(s.db).FindByNameAndArtist(ctx, name, artistID)
}

// SaveSync writes artists first, then albums, then the flattened tracks,
// all inside one transaction. Artists are written before albums because
// albums reference artist ids and the schema does not enforce the
// relation.
func (s *SQLStore) SaveSync(ctx context.Context, artists []models.Artist, albums []models.Album) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin sync transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := repositories.NewArtistRepository(tx).PutMany(ctx, artists); err != nil {
		return fmt.Errorf("failed to persist artists: %w", err)
	}

	if _, err := repositories.NewAlbumRepository(tx).PutMany(ctx, albums); err != nil {
		return fmt.Errorf("failed to persist albums: %w", err)
	}

	var tracks []models.Track
	for _, album := range albums {
		tracks = append(tracks, album.Tracks...)
	}
	if _, err := repositories.NewTrackRepository(tx).PutMany(ctx, tracks); err != nil {
		return fmt.Errorf("failed to persist tracks: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sync transaction: %w", err)
	}
	return nil
}
