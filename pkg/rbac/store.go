package rbac

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/farmhand-io/farmhand/pkg/apperr"
)

// Store handles RBAC data persistence
type Store struct {
	db *sql.DB
}

// NewStore creates a new RBAC store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ListPermissions lists the global permission catalog
func (s *Store) ListPermissions(ctx context.Context) ([]PermissionRecord, error) {
	query := `
		SELECT id, name, created_at
		FROM permissions
		ORDER BY name ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	defer rows.Close()

	var permissions []PermissionRecord
	for rows.Next() {
		var p PermissionRecord
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}
		permissions = append(permissions, p)
	}

	return permissions, rows.Err()
}

// GetPermissionByName retrieves a catalog permission by name
func (s *Store) GetPermissionByName(ctx context.Context, name string) (*PermissionRecord, error) {
	query := `SELECT id, name, created_at FROM permissions WHERE name = $1`

	var p PermissionRecord
	err := s.db.QueryRowContext(ctx, query, name).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("permission", "%s", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get permission: %w", err)
	}

	return &p, nil
}

// GetPermissionByID retrieves a catalog permission by id
func (s *Store) GetPermissionByID(ctx context.Context, permissionID int64) (*PermissionRecord, error) {
	query := `SELECT id, name, created_at FROM permissions WHERE id = $1`

	var p PermissionRecord
	err := s.db.QueryRowContext(ctx, query, permissionID).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("permission", "%d", permissionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get permission: %w", err)
	}

	return &p, nil
}

// ListRoles lists the global role catalog
func (s *Store) ListRoles(ctx context.Context) ([]Role, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM roles
		ORDER BY name ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}

	return roles, rows.Err()
}

// GetRoleByID retrieves a role by ID
func (s *Store) GetRoleByID(ctx context.Context, roleID int64) (*Role, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM roles WHERE id = $1`

	var role Role
	err := s.db.QueryRowContext(ctx, query, roleID).Scan(
		&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("role", "id %d", roleID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	return &role, nil
}

// GetRoleByName retrieves a role by name
func (s *Store) GetRoleByName(ctx context.Context, name string) (*Role, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM roles WHERE name = $1`

	var role Role
	err := s.db.QueryRowContext(ctx, query, name).Scan(
		&role.ID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("role", "%s", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	return &role, nil
}

// ListRolesWithBindings lists every catalog role together with the
// permission names bound to it in the given farm. Roles without bindings
// appear with an empty permission list.
func (s *Store) ListRolesWithBindings(ctx context.Context, farmID int64) ([]RoleWithBindings, error) {
	roles, err := s.ListRoles(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT rp.role_id, p.name
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.farm_id = $1
		ORDER BY p.name ASC
	`
	rows, err := s.db.QueryContext(ctx, query, farmID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bindings: %w", err)
	}
	defer rows.Close()

	// Duplicate bindings collapse to one effective grant here.
	byRole := make(map[int64]map[string]bool)
	for rows.Next() {
		var roleID int64
		var name string
		if err := rows.Scan(&roleID, &name); err != nil {
			return nil, fmt.Errorf("failed to scan binding: %w", err)
		}
		if byRole[roleID] == nil {
			byRole[roleID] = make(map[string]bool)
		}
		byRole[roleID][name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]RoleWithBindings, 0, len(roles))
	for _, role := range roles {
		rwb := RoleWithBindings{Role: role, Permissions: []string{}}
		for _, p := range PermissionCatalog() {
			if byRole[role.ID][string(p)] {
				rwb.Permissions = append(rwb.Permissions, string(p))
			}
		}
		result = append(result, rwb)
	}

	return result, nil
}

// Bind grants a permission to a role within one farm. The layer does not
// deduplicate: callers must not bind the same triple twice (a duplicate
// simply collapses to one effective grant downstream).
func (s *Store) Bind(ctx context.Context, roleID, permissionID, farmID int64) error {
	query := `
		INSERT INTO role_permissions (role_id, permission_id, farm_id)
		VALUES ($1, $2, $3)
	`
	if _, err := s.db.ExecContext(ctx, query, roleID, permissionID, farmID); err != nil {
		return fmt.Errorf("failed to bind permission: %w", err)
	}
	return nil
}

// Unbind removes at most one matching binding; a no-op if none exists.
func (s *Store) Unbind(ctx context.Context, roleID, permissionID, farmID int64) error {
	query := `
		DELETE FROM role_permissions
		WHERE id IN (
			SELECT id FROM role_permissions
			WHERE role_id = $1 AND permission_id = $2 AND farm_id = $3
			LIMIT 1
		)
	`
	if _, err := s.db.ExecContext(ctx, query, roleID, permissionID, farmID); err != nil {
		return fmt.Errorf("failed to unbind permission: %w", err)
	}
	return nil
}

// GetMembership looks up the membership row keyed by (user, farm).
// Returns (nil, nil) when the user is not a member.
func (s *Store) GetMembership(ctx context.Context, userID, farmID int64) (*Membership, error) {
	query := `
		SELECT fm.id, fm.farm_id, fm.user_id, fm.role_id, r.name, fm.created_at
		FROM farm_members fm
		JOIN roles r ON r.id = fm.role_id
		WHERE fm.user_id = $1 AND fm.farm_id = $2
	`

	var m Membership
	err := s.db.QueryRowContext(ctx, query, userID, farmID).Scan(
		&m.ID, &m.FarmID, &m.UserID, &m.RoleID, &m.RoleName, &m.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	return &m, nil
}

// GetRolePermissions returns the distinct permission names bound to the
// role within the given farm only. Bindings for the same role in other
// farms are excluded.
func (s *Store) GetRolePermissions(ctx context.Context, roleID, farmID int64) ([]string, error) {
	query := `
		SELECT DISTINCT p.name
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1 AND rp.farm_id = $2
	`
	rows, err := s.db.QueryContext(ctx, query, roleID, farmID)
	if err != nil {
		return nil, fmt.Errorf("failed to get role permissions: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan permission name: %w", err)
		}
		names = append(names, name)
	}

	return names, rows.Err()
}
