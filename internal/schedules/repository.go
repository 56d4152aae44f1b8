package schedules

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/escalei/backend/internal/models"
)

// Repository handles schedule and assignment persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a schedule repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new draft schedule.
func (r *Repository) Create(ctx context.Context, s *models.Schedule) error {
	const q = `INSERT INTO schedules (id, name, type, starts_at, ends_at, status, created_by)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, 'draft', $5)
		RETURNING id, status, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, s.Name, s.Type, s.StartsAt, s.EndsAt, s.CreatedBy).
		Scan(&s.ID, &s.Status, &s.CreatedAt, &s.UpdatedAt)
}

// GetByID returns a schedule by ID. Returns pgx.ErrNoRows when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Schedule, error) {
	const q = `SELECT id, name, COALESCE(type,''), starts_at, ends_at, status, created_by, created_at, updated_at
		FROM schedules WHERE id = $1`
	var s models.Schedule
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&s.ID, &s.Name, &s.Type, &s.StartsAt, &s.EndsAt, &s.Status, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns schedules ordered by start time, optionally filtered by status.
func (r *Repository) List(ctx context.Context, status *models.ScheduleStatus) ([]models.Schedule, error) {
	base := `SELECT id, name, COALESCE(type,''), starts_at, ends_at, status, created_by, created_at, updated_at FROM schedules`
	var args []interface{}
	if status != nil {
		base += ` WHERE status = $1`
		args = append(args, *status)
	}
	rows, err := r.pool.Query(ctx, base+` ORDER BY starts_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Schedule
	for rows.Next() {
		var s models.Schedule
		if err := rows.Scan(&s.ID, &s.Name, &s.Type, &s.StartsAt, &s.EndsAt, &s.Status, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Update changes name, type and window. Only draft schedules may be updated;
// returns pgx.ErrNoRows for active ones.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, s *models.Schedule) error {
	const q = `UPDATE schedules SET name = $1, type = $2, starts_at = $3, ends_at = $4, updated_at = NOW()
		WHERE id = $5 AND status = 'draft'
		RETURNING id, name, COALESCE(type,''), starts_at, ends_at, status, created_by, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, s.Name, s.Type, s.StartsAt, s.EndsAt, id).
		Scan(&s.ID, &s.Name, &s.Type, &s.StartsAt, &s.EndsAt, &s.Status, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
}

// UpdateStatus advances the lifecycle status and returns the updated row.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ScheduleStatus) (*models.Schedule, error) {
	const q = `UPDATE schedules SET status = $1, updated_at = NOW() WHERE id = $2
		RETURNING id, name, COALESCE(type,''), starts_at, ends_at, status, created_by, created_at, updated_at`
	var s models.Schedule
	err := r.pool.QueryRow(ctx, q, status, id).
		Scan(&s.ID, &s.Name, &s.Type, &s.StartsAt, &s.EndsAt, &s.Status, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete removes a schedule and its assignments (cascade).
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM schedules WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id)
	return err
}

// ListBySchedule returns the assignment set for a schedule in a stable order.
func (r *Repository) ListBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]models.Assignment, error) {
	const q = `SELECT id, schedule_id, user_id, role_id, area_id, created_at
		FROM assignments WHERE schedule_id = $1 ORDER BY area_id, role_id, user_id`
	rows, err := r.pool.Query(ctx, q, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Assignment
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(&a.ID, &a.ScheduleID, &a.UserID, &a.RoleID, &a.AreaID, &a.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// ReplaceForSchedule swaps the schedule's entire assignment set in one
// transaction: delete the old rows, insert the new ones, commit. Any error
// rolls the whole thing back and leaves the previous set untouched.
func (r *Repository) ReplaceForSchedule(ctx context.Context, scheduleID uuid.UUID, assignments []models.Assignment) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM assignments WHERE schedule_id = $1`, scheduleID); err != nil {
		return fmt.Errorf("clear assignments: %w", err)
	}
	for _, a := range assignments {
		const q = `INSERT INTO assignments (id, schedule_id, user_id, role_id, area_id)
			VALUES (gen_random_uuid(), $1, $2, $3, $4)`
		if _, err := tx.Exec(ctx, q, scheduleID, a.UserID, a.RoleID, a.AreaID); err != nil {
			return fmt.Errorf("insert assignment: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// AssignedUserIDs returns the distinct users assigned to a schedule, for
// publish notifications.
func (r *Repository) AssignedUserIDs(ctx context.Context, scheduleID uuid.UUID) ([]uuid.UUID, error) {
	const q = `SELECT DISTINCT user_id FROM assignments WHERE schedule_id = $1`
	rows, err := r.pool.Query(ctx, q, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AssignedRecipients returns the distinct assigned users with their contact
// details, for publish notification emails.
func (r *Repository) AssignedRecipients(ctx context.Context, scheduleID uuid.UUID) ([]models.UserPublic, error) {
	const q = `SELECT DISTINCT u.id, u.email, u.full_name, u.role, COALESCE(u.phone,''), u.created_at
		FROM assignments a JOIN users u ON u.id = a.user_id
		WHERE a.schedule_id = $1 ORDER BY u.email`
	rows, err := r.pool.Query(ctx, q, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.UserPublic
	for rows.Next() {
		var u models.UserPublic
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.Phone, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CanManageSchedule reports whether the user created the schedule or is a
// platform admin. Implements scheduling.PermissionChecker.
func (r *Repository) CanManageSchedule(ctx context.Context, userID uuid.UUID, schedule *models.Schedule) (bool, error) {
	if schedule.CreatedBy == userID {
		return true, nil
	}
	const q = `SELECT role FROM users WHERE id = $1`
	var role models.UserRole
	if err := r.pool.QueryRow(ctx, q, userID).Scan(&role); err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return role == models.UserRoleAdmin, nil
}
