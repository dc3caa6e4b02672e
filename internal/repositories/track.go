package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"musebox/internal/models"
)

// TrackRepository persists the flattened [models.Track] rows.
//
// The tracks table duplicates the track lists embedded on album rows; the
// pipelines write both in the same transaction.
type TrackRepository struct {
	q Querier
}

// NewTrackRepository creates a TrackRepository over the given Querier.
func NewTrackRepository(q Querier) *TrackRepository {
	return &TrackRepository{q: q}
}

// PutMany upserts the given tracks and returns the number written.
func (r *TrackRepository) PutMany(ctx context.Context, tracks []models.Track) (int, error) {
	query := `
		INSERT INTO tracks (id, main_artist_id, secondary_artist_ids, name, track_number, resource, duration_seconds, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id)
		DO UPDATE SET
			main_artist_id = excluded.main_artist_id,
			secondary_artist_ids = excluded.secondary_artist_ids,
			name = excluded.name,
			track_number = excluded.track_number,
			resource = excluded.resource,
			duration_seconds = excluded.duration_seconds,
			updated_at = excluded.updated_at
	`

	now := time.Now()
	count := 0
	for _, track := range tracks {
		if err := track.Validate(); err != nil {
			return count, fmt.Errorf("validation failed: %w", err)
		}

		secondary, err := marshalJSON(track.SecondaryArtistIDs)
		if err != nil {
			return count, fmt.Errorf("track %s: %w", track.ID, err)
		}

		_, err = r.q.ExecContext(ctx, query,
			track.ID,
			track.MainArtistID,
			secondary,
			track.Name,
			track.TrackNumber,
			track.Resource,
			track.DurationSeconds,
			now,
		)
		if err != nil {
			return count, fmt.Errorf("failed to upsert track %s: %w", track.ID, err)
		}
		count++
	}
	return count, nil
}

// ByID retrieves a track by id. Returns (nil, nil) when absent.
func (r *TrackRepository) ByID(ctx context.Context, id string) (*models.Track, error) {
	query := selectTracks + ` WHERE id = ?`

	track, err := scanTrack(r.q.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return track, err
}

// Filtered retrieves tracks matching the exact-match criteria, up to limit.
// A zero limit returns all matches.
func (r *TrackRepository) Filtered(ctx context.Context, criteria map[string]any, limit int) ([]models.Track, error) {
	query := selectTracks + ` WHERE 1=1`
	args := []any{}

	if name, ok := criteria["name"].(string); ok && name != "" {
		query += " AND name = ?"
		args = append(args, name)
	}
	if artistID, ok := criteria["main_artist_id"].(string); ok && artistID != "" {
		query += " AND main_artist_id = ?"
		args = append(args, artistID)
	}

	query += " ORDER BY track_number ASC, name ASC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []models.Track
	for rows.Next() {
		track, err := scanTrack(rows.Scan)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, *track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return tracks, nil
}

const selectTracks = `SELECT id, main_artist_id, secondary_artist_ids, name, track_number, resource, duration_seconds FROM tracks`

func scanTrack(scan func(dest ...any) error) (*models.Track, error) {
	var (
		track     models.Track
		secondary string
	)
	err := scan(&track.ID, &track.MainArtistID, &secondary, &track.Name, &track.TrackNumber, &track.Resource, &track.DurationSeconds)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}

	if err := unmarshalJSON(secondary, &track.SecondaryArtistIDs); err != nil {
		return nil, fmt.Errorf("track %s secondary artists: %w", track.ID, err)
	}
	return &track, nil
}
