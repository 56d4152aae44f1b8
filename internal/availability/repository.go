package availability

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/escalei/backend/internal/models"
	"github.com/escalei/backend/internal/scheduling"
)

// Repository handles weekly unavailability and exception date persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an availability repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertWeekly sets the blocked flag for one (user, weekday, shift) bucket.
func (r *Repository) UpsertWeekly(ctx context.Context, w *models.WeeklyUnavailability) error {
	const q = `INSERT INTO weekly_unavailability (id, user_id, weekday, shift, blocked)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
		ON CONFLICT (user_id, weekday, shift) DO UPDATE SET blocked = EXCLUDED.blocked
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, w.UserID, w.Weekday, w.Shift, w.Blocked).
		Scan(&w.ID, &w.CreatedAt)
}

// DeleteWeekly removes one weekly rule, restoring the default (available).
func (r *Repository) DeleteWeekly(ctx context.Context, userID uuid.UUID, weekday int, shift string) error {
	const q = `DELETE FROM weekly_unavailability WHERE user_id = $1 AND weekday = $2 AND shift = $3`
	_, err := r.pool.Exec(ctx, q, userID, weekday, shift)
	return err
}

// ListWeekly returns a user's weekly rules.
func (r *Repository) ListWeekly(ctx context.Context, userID uuid.UUID) ([]models.WeeklyUnavailability, error) {
	const q = `SELECT id, user_id, weekday, shift, blocked, created_at
		FROM weekly_unavailability WHERE user_id = $1 ORDER BY weekday, shift`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.WeeklyUnavailability
	for rows.Next() {
		var w models.WeeklyUnavailability
		if err := rows.Scan(&w.ID, &w.UserID, &w.Weekday, &w.Shift, &w.Blocked, &w.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, w)
	}
	return list, rows.Err()
}

// UpsertException sets the availability override for one calendar date.
func (r *Repository) UpsertException(ctx context.Context, e *models.ExceptionDate) error {
	const q = `INSERT INTO exception_dates (id, user_id, date, is_available)
		VALUES (gen_random_uuid(), $1, $2, $3)
		ON CONFLICT (user_id, date) DO UPDATE SET is_available = EXCLUDED.is_available
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, e.UserID, e.Date, e.IsAvailable).
		Scan(&e.ID, &e.CreatedAt)
}

// DeleteException removes a date override, restoring the weekly rule.
func (r *Repository) DeleteException(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	const q = `DELETE FROM exception_dates WHERE id = $1 AND user_id = $2`
	_, err := r.pool.Exec(ctx, q, id, userID)
	return err
}

// ListExceptions returns a user's date overrides.
func (r *Repository) ListExceptions(ctx context.Context, userID uuid.UUID) ([]models.ExceptionDate, error) {
	const q = `SELECT id, user_id, date, is_available, created_at
		FROM exception_dates WHERE user_id = $1 ORDER BY date`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.ExceptionDate
	for rows.Next() {
		var e models.ExceptionDate
		if err := rows.Scan(&e.ID, &e.UserID, &e.Date, &e.IsAvailable, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// WeeklyRules returns blocked weekly buckets for a set of users. Implements
// scheduling.AvailabilityStore.
func (r *Repository) WeeklyRules(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]scheduling.WeeklyRule, error) {
	if len(userIDs) == 0 {
		return map[uuid.UUID][]scheduling.WeeklyRule{}, nil
	}
	const q = `SELECT user_id, weekday, shift, blocked FROM weekly_unavailability WHERE user_id = ANY($1)`
	rows, err := r.pool.Query(ctx, q, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]scheduling.WeeklyRule)
	for rows.Next() {
		var userID uuid.UUID
		var rule scheduling.WeeklyRule
		var shift string
		if err := rows.Scan(&userID, &rule.Weekday, &shift, &rule.Blocked); err != nil {
			return nil, err
		}
		rule.Shift = scheduling.Shift(shift)
		out[userID] = append(out[userID], rule)
	}
	return out, rows.Err()
}

// Exceptions returns date overrides for a set of users. Implements
// scheduling.AvailabilityStore.
func (r *Repository) Exceptions(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID][]scheduling.Exception, error) {
	if len(userIDs) == 0 {
		return map[uuid.UUID][]scheduling.Exception{}, nil
	}
	const q = `SELECT user_id, date, is_available FROM exception_dates WHERE user_id = ANY($1)`
	rows, err := r.pool.Query(ctx, q, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]scheduling.Exception)
	for rows.Next() {
		var userID uuid.UUID
		var exc scheduling.Exception
		if err := rows.Scan(&userID, &exc.Date, &exc.IsAvailable); err != nil {
			return nil, err
		}
		out[userID] = append(out[userID], exc)
	}
	return out, rows.Err()
}
