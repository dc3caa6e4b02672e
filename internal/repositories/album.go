package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"musebox/internal/models"
)

// AlbumRepository persists [models.Album] records with their embedded
// track lists.
type AlbumRepository struct {
	q Querier
}

// NewAlbumRepository creates an AlbumRepository over the given Querier.
func NewAlbumRepository(q Querier) *AlbumRepository {
	return &AlbumRepository{q: q}
}

// PutMany upserts the given albums and returns the number written.
func (r *AlbumRepository) PutMany(ctx context.Context, albums []models.Album) (int, error) {
	query := `
		INSERT INTO albums (id, name, artist_id, embedded_cover, release_year, provider_id, genres, tracks, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id)
		DO UPDATE SET
			name = excluded.name,
			artist_id = excluded.artist_id,
			embedded_cover = excluded.embedded_cover,
			release_year = excluded.release_year,
			provider_id = excluded.provider_id,
			genres = excluded.genres,
			tracks = excluded.tracks,
			updated_at = excluded.updated_at
	`

	now := time.Now()
	count := 0
	for _, album := range albums {
		if album.ID == "" {
			return count, fmt.Errorf("album %q: id is required", album.Name)
		}

		genres, err := marshalJSON(album.Genres)
		if err != nil {
			return count, fmt.Errorf("album %s: %w", album.ID, err)
		}
		tracks, err := marshalJSON(album.Tracks)
		if err != nil {
			return count, fmt.Errorf("album %s: %w", album.ID, err)
		}

		_, err = r.q.ExecContext(ctx, query,
			album.ID,
			album.Name,
			album.ArtistID,
			album.EmbeddedCover,
			album.ReleaseYear,
			album.ProviderID,
			genres,
			tracks,
			now,
		)
		if err != nil {
			return count, fmt.Errorf("failed to upsert album %s: %w", album.ID, err)
		}
		count++
	}
	return count, nil
}

// ByID retrieves an album by id. Returns (nil, nil) when absent.
func (r *AlbumRepository) ByID(ctx context.Context, id string) (*models.Album, error) {
	query := selectAlbums + ` WHERE id = ?`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// FindByNameAndArtist retrieves an album by exact (name, artist id) match.
// Returns (nil, nil) when absent.
func (r *AlbumRepository) FindByNameAndArtist(ctx context.Context, name, artistID string) (*models.Album, error) {
	query := selectAlbums + ` WHERE name = ? AND artist_id = ? LIMIT 1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, name, artistID))
}

// Filtered retrieves albums matching the exact-match criteria, up to limit.
// A zero limit returns all matches.
func (r *AlbumRepository) Filtered(ctx context.Context, criteria map[string]any, limit int) ([]models.Album, error) {
	query := selectAlbums + ` WHERE 1=1`
	args := []any{}

	if name, ok := criteria["name"].(string); ok && name != "" {
		query += " AND name = ?"
		args = append(args, name)
	}
	if artistID, ok := criteria["artist_id"].(string); ok && artistID != "" {
		query += " AND artist_id = ?"
		args = append(args, artistID)
	}
	if providerID, ok := criteria["provider_id"].(string); ok && providerID != "" {
		query += " AND provider_id = ?"
		args = append(args, providerID)
	}

	query += " ORDER BY name ASC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query albums: %w", err)
	}
	defer rows.Close()

	var albums []models.Album
	for rows.Next() {
		album, err := scanAlbum(rows.Scan)
		if err != nil {
			return nil, err
		}
		albums = append(albums, *album)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return albums, nil
}

const selectAlbums = `SELECT id, name, artist_id, embedded_cover, release_year, provider_id, genres, tracks FROM albums`

func (r *AlbumRepository) scanOne(row *sql.Row) (*models.Album, error) {
	album, err := scanAlbum(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return album, err
}

func scanAlbum(scan func(dest ...any) error) (*models.Album, error) {
	var (
		album  models.Album
		genres string
		tracks string
	)
	err := scan(&album.ID, &album.Name, &album.ArtistID, &album.EmbeddedCover, &album.ReleaseYear, &album.ProviderID, &genres, &tracks)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan album: %w", err)
	}

	if err := unmarshalJSON(genres, &album.Genres); err != nil {
		return nil, fmt.Errorf("album %s genres: %w", album.ID, err)
	}
	if err := unmarshalJSON(tracks, &album.Tracks); err != nil {
		return nil, fmt.Errorf("album %s tracks: %w", album.ID, err)
	}
	return &album, nil
}
