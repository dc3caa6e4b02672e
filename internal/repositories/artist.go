package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"musebox/internal/models"
)

// ArtistRepository persists [models.Artist] records.
type ArtistRepository struct {
	q Querier
}

// NewArtistRepository creates an ArtistRepository over the given Querier.
func NewArtistRepository(q Querier) *ArtistRepository {
	return &ArtistRepository{q: q}
}

// PutMany upserts the given artists and returns the number written.
func (r *ArtistRepository) PutMany(ctx context.Context, artists []models.Artist) (int, error) {
	query := `
		INSERT INTO artists (id, name, image, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id)
		DO UPDATE SET name = excluded.name, image = excluded.image, updated_at = excluded.updated_at
	`

	now := time.Now()
	count := 0
	for _, artist := range artists {
		if artist.ID == "" {
			return count, fmt.Errorf("artist %q: id is required", artist.Name)
		}
		if _, err := r.q.ExecContext(ctx, query, artist.ID, artist.Name, artist.Image, now); err != nil {
			return count, fmt.Errorf("failed to upsert artist %s: %w", artist.ID, err)
		}
		count++
	}
	return count, nil
}

// ByID retrieves an artist by id. Returns (nil, nil) when absent.
func (r *ArtistRepository) ByID(ctx context.Context, id string) (*models.Artist, error) {
	query := `SELECT id, name, image FROM artists WHERE id = ?`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// FindByName retrieves an artist by exact name match. Returns (nil, nil) when absent.
func (r *ArtistRepository) FindByName(ctx context.Context, name string) (*models.Artist, error) {
	query := `SELECT id, name, image FROM artists WHERE name = ? LIMIT 1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, name))
}

// Filtered retrieves artists matching the exact-match criteria, up to limit.
// A zero limit returns all matches.
func (r *ArtistRepository) Filtered(ctx context.Context, criteria map[string]any, limit int) ([]models.Artist, error) {
	query := `SELECT id, name, image FROM artists WHERE 1=1`
	args := []any{}

	if name, ok := criteria["name"].(string); ok && name != "" {
		query += " AND name = ?"
		args = append(args, name)
	}

	query += " ORDER BY name ASC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query artists: %w", err)
	}
	defer rows.Close()

	var artists []models.Artist
	for rows.Next() {
		var artist models.Artist
		if err := rows.Scan(&artist.ID, &artist.Name, &artist.Image); err != nil {
			return nil, fmt.Errorf("failed to scan artist: %w", err)
		}
		artists = append(artists, artist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return artists, nil
}

func (r *ArtistRepository) scanOne(row *sql.Row) (*models.Artist, error) {
	var artist models.Artist
	err := row.Scan(&artist.ID, &artist.Name, &artist.Image)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan artist: %w", err)
	}
	return &artist, nil
}
