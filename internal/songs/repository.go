package songs

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/escalei/backend/internal/models"
)

// Repository handles song catalog persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a song repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new song.
func (r *Repository) Create(ctx context.Context, s *models.Song) error {
	const q = `INSERT INTO songs (id, area_id, title, artist, tone, spotify_track_id, created_by)
		VALUES (gen_random_uuid(), $1, $2, NULLIF($3,''), NULLIF($4,''), NULLIF($5,''), $6)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, s.AreaID, s.Title, s.Artist, s.Tone, s.SpotifyTrackID, s.CreatedBy).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// GetByID returns a song by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Song, error) {
	const q = `SELECT id, area_id, title, COALESCE(artist,''), COALESCE(tone,''), COALESCE(spotify_track_id,''), created_by, created_at, updated_at
		FROM songs WHERE id = $1`
	var s models.Song
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&s.ID, &s.AreaID, &s.Title, &s.Artist, &s.Tone, &s.SpotifyTrackID, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByArea returns an area's songs, optionally filtered by a title/artist
// search term.
func (r *Repository) ListByArea(ctx context.Context, areaID uuid.UUID, search string) ([]models.Song, error) {
	const q = `SELECT id, area_id, title, COALESCE(artist,''), COALESCE(tone,''), COALESCE(spotify_track_id,''), created_by, created_at, updated_at
		FROM songs WHERE area_id = $1 AND ($2 = '' OR title ILIKE '%' || $2 || '%' OR artist ILIKE '%' || $2 || '%')
		ORDER BY title`
	rows, err := r.pool.Query(ctx, q, areaID, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Song
	for rows.Next() {
		var s models.Song
		if err := rows.Scan(&s.ID, &s.AreaID, &s.Title, &s.Artist, &s.Tone, &s.SpotifyTrackID, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Update changes a song's metadata.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, s *models.Song) error {
	const q = `UPDATE songs SET title = $1, artist = NULLIF($2,''), tone = NULLIF($3,''),
		spotify_track_id = NULLIF($4,''), updated_at = NOW() WHERE id = $5`
	_, err := r.pool.Exec(ctx, q, s.Title, s.Artist, s.Tone, s.SpotifyTrackID, id)
	return err
}

// Delete removes a song.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM songs WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id)
	return err
}
