package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/escalei/backend/internal/models"
)

// Repository handles chat message persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a chat repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Save inserts a chat message and fills its ID, UserName and CreatedAt.
// Implements realtime.ChatStore.
func (r *Repository) Save(ctx context.Context, msg *models.ChatMessage) error {
	const q = `INSERT INTO chat_messages (id, area_id, user_id, body)
		VALUES (gen_random_uuid(), $1, $2, $3)
		RETURNING id, created_at, (SELECT full_name FROM users WHERE id = $2)`
	return r.pool.QueryRow(ctx, q, msg.AreaID, msg.UserID, msg.Body).
		Scan(&msg.ID, &msg.CreatedAt, &msg.UserName)
}

// History returns an area's messages newest first, up to limit, older than
// before when set.
func (r *Repository) History(ctx context.Context, areaID uuid.UUID, before *time.Time, limit int) ([]models.ChatMessage, error) {
	const q = `SELECT m.id, m.area_id, m.user_id, u.full_name, m.body, m.created_at
		FROM chat_messages m JOIN users u ON u.id = m.user_id
		WHERE m.area_id = $1 AND ($2::timestamptz IS NULL OR m.created_at < $2)
		ORDER BY m.created_at DESC LIMIT $3`
	rows, err := r.pool.Query(ctx, q, areaID, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.AreaID, &m.UserID, &m.UserName, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
