package areas

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/escalei/backend/internal/models"
)

// Repository handles area, role and membership persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an area repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new area.
func (r *Repository) Create(ctx context.Context, a *models.Area) error {
	const q = `INSERT INTO areas (id, name, description, created_by)
		VALUES (gen_random_uuid(), $1, $2, $3)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, a.Name, a.Description, a.CreatedBy).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// GetByID returns an area by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Area, error) {
	const q = `SELECT id, name, COALESCE(description,''), COALESCE(cover_key,''), created_by, created_at, updated_at
		FROM areas WHERE id = $1`
	var a models.Area
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&a.ID, &a.Name, &a.Description, &a.CoverKey, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns all areas ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.Area, error) {
	const q = `SELECT id, name, COALESCE(description,''), COALESCE(cover_key,''), created_by, created_at, updated_at
		FROM areas ORDER BY name`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Area
	for rows.Next() {
		var a models.Area
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.CoverKey, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// Update changes name and description.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name, description string) error {
	const q = `UPDATE areas SET name = $1, description = $2, updated_at = NOW() WHERE id = $3`
	_, err := r.pool.Exec(ctx, q, name, description, id)
	return err
}

// SetCoverKey stores the S3 object key of the area's cover image.
func (r *Repository) SetCoverKey(ctx context.Context, id uuid.UUID, key string) error {
	const q = `UPDATE areas SET cover_key = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.pool.Exec(ctx, q, key, id)
	return err
}

// Delete removes an area, its roles and memberships (cascade).
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM areas WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id)
	return err
}

// CreateRole adds a role under an area.
func (r *Repository) CreateRole(ctx context.Context, role *models.Role) error {
	const q = `INSERT INTO roles (id, area_id, name) VALUES (gen_random_uuid(), $1, $2)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, role.AreaID, role.Name).Scan(&role.ID, &role.CreatedAt)
}

// ListRoles returns the roles configured under an area.
func (r *Repository) ListRoles(ctx context.Context, areaID uuid.UUID) ([]models.Role, error) {
	const q = `SELECT id, area_id, name, created_at FROM roles WHERE area_id = $1 ORDER BY name`
	rows, err := r.pool.Query(ctx, q, areaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Role
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.AreaID, &role.Name, &role.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, role)
	}
	return list, rows.Err()
}

// DeleteRole removes a role and its assignments (cascade).
func (r *Repository) DeleteRole(ctx context.Context, roleID uuid.UUID) error {
	const q = `DELETE FROM roles WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, roleID)
	return err
}

// AddMember puts a user in an area.
func (r *Repository) AddMember(ctx context.Context, areaID, userID uuid.UUID) error {
	const q = `INSERT INTO memberships (user_id, area_id) VALUES ($1, $2)
		ON CONFLICT (user_id, area_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, q, userID, areaID)
	return err
}

// RemoveMember takes a user out of an area and drops their role assignments
// for roles under that area.
func (r *Repository) RemoveMember(ctx context.Context, areaID, userID uuid.UUID) error {
	const delRoles = `DELETE FROM role_assignments
		WHERE user_id = $1 AND role_id IN (SELECT id FROM roles WHERE area_id = $2)`
	if _, err := r.pool.Exec(ctx, delRoles, userID, areaID); err != nil {
		return err
	}
	const q = `DELETE FROM memberships WHERE user_id = $1 AND area_id = $2`
	_, err := r.pool.Exec(ctx, q, userID, areaID)
	return err
}

// AssignRole gives a user a role with their personal priority. The priority is
// upserted; it must stay unique across the user's roles (enforced in schema).
func (r *Repository) AssignRole(ctx context.Context, userID, roleID uuid.UUID, priority int) error {
	const q = `INSERT INTO role_assignments (user_id, role_id, priority) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, role_id) DO UPDATE SET priority = EXCLUDED.priority`
	_, err := r.pool.Exec(ctx, q, userID, roleID, priority)
	return err
}

// UnassignRole removes a user's role.
func (r *Repository) UnassignRole(ctx context.Context, userID, roleID uuid.UUID) error {
	const q = `DELETE FROM role_assignments WHERE user_id = $1 AND role_id = $2`
	_, err := r.pool.Exec(ctx, q, userID, roleID)
	return err
}

// ListMembers returns the area roster with each member's roles there.
func (r *Repository) ListMembers(ctx context.Context, areaID uuid.UUID) ([]models.AreaMember, error) {
	const q = `SELECT u.id, u.email, u.full_name, u.role, COALESCE(u.phone,''), u.created_at
		FROM memberships m JOIN users u ON u.id = m.user_id
		WHERE m.area_id = $1 ORDER BY u.full_name, u.email`
	rows, err := r.pool.Query(ctx, q, areaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.AreaMember
	for rows.Next() {
		var u models.UserPublic
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.Phone, &u.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, models.AreaMember{User: u})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const rq = `SELECT ra.user_id, ra.role_id, ra.priority, ra.created_at
		FROM role_assignments ra JOIN roles ro ON ro.id = ra.role_id
		WHERE ro.area_id = $1`
	roleRows, err := r.pool.Query(ctx, rq, areaID)
	if err != nil {
		return nil, err
	}
	defer roleRows.Close()

	byUser := make(map[uuid.UUID][]models.RoleAssignment)
	for roleRows.Next() {
		var ra models.RoleAssignment
		if err := roleRows.Scan(&ra.UserID, &ra.RoleID, &ra.Priority, &ra.CreatedAt); err != nil {
			return nil, err
		}
		byUser[ra.UserID] = append(byUser[ra.UserID], ra)
	}
	if err := roleRows.Err(); err != nil {
		return nil, err
	}
	for i := range members {
		members[i].Roles = byUser[members[i].User.ID]
	}
	return members, nil
}

// IsMember reports whether the user belongs to the area. Implements
// realtime.MembershipChecker.
func (r *Repository) IsMember(ctx context.Context, areaID, userID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM memberships WHERE area_id = $1 AND user_id = $2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, q, areaID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// AreaMemberIDs returns the IDs of everyone in the area. Implements
// scheduling.MembershipStore.
func (r *Repository) AreaMemberIDs(ctx context.Context, areaID uuid.UUID) ([]uuid.UUID, error) {
	const q = `SELECT user_id FROM memberships WHERE area_id = $1 ORDER BY user_id`
	rows, err := r.pool.Query(ctx, q, areaID)
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

// RoleHolders returns userID -> personal priority for everyone holding the
// role. Implements scheduling.MembershipStore.
func (r *Repository) RoleHolders(ctx context.Context, roleID uuid.UUID) (map[uuid.UUID]int, error) {
	const q = `SELECT user_id, priority FROM role_assignments WHERE role_id = $1`
	rows, err := r.pool.Query(ctx, q, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holders := make(map[uuid.UUID]int)
	for rows.Next() {
		var id uuid.UUID
		var priority int
		if err := rows.Scan(&id, &priority); err != nil {
			return nil, err
		}
		holders[id] = priority
	}
	return holders, rows.Err()
}

// RoleBelongsToArea reports whether the role is configured under the area.
// Implements scheduling.MembershipStore.
func (r *Repository) RoleBelongsToArea(ctx context.Context, roleID, areaID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM roles WHERE id = $1 AND area_id = $2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, q, roleID, areaID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
