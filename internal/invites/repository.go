package invites

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/escalei/backend/internal/models"
)

// Repository handles invite persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an invite repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new invite.
func (r *Repository) Create(ctx context.Context, inv *models.Invite) error {
	const q = `INSERT INTO invites (id, email, area_id, code, created_by, expires_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, inv.Email, inv.AreaID, inv.Code, inv.CreatedBy, inv.ExpiresAt).
		Scan(&inv.ID, &inv.CreatedAt)
}

// GetByCode returns an invite by its redemption code.
func (r *Repository) GetByCode(ctx context.Context, code string) (*models.Invite, error) {
	const q = `SELECT id, email, area_id, code, created_by, expires_at, accepted_at, created_at
		FROM invites WHERE code = $1`
	var inv models.Invite
	err := r.pool.QueryRow(ctx, q, code).
		Scan(&inv.ID, &inv.Email, &inv.AreaID, &inv.Code, &inv.CreatedBy, &inv.ExpiresAt, &inv.AcceptedAt, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// ListByArea returns an area's invites, newest first.
func (r *Repository) ListByArea(ctx context.Context, areaID uuid.UUID) ([]models.Invite, error) {
	const q = `SELECT id, email, area_id, code, created_by, expires_at, accepted_at, created_at
		FROM invites WHERE area_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, areaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Invite
	for rows.Next() {
		var inv models.Invite
		if err := rows.Scan(&inv.ID, &inv.Email, &inv.AreaID, &inv.Code, &inv.CreatedBy, &inv.ExpiresAt, &inv.AcceptedAt, &inv.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// MarkAccepted records the redemption time. Only the first acceptance wins;
// returns the number of rows updated.
func (r *Repository) MarkAccepted(ctx context.Context, id uuid.UUID, at time.Time) (int64, error) {
	const q = `UPDATE invites SET accepted_at = $1 WHERE id = $2 AND accepted_at IS NULL`
	tag, err := r.pool.Exec(ctx, q, at, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Delete revokes an invite.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM invites WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id)
	return err
}
