package rbac

import (
	"fmt"
	"strings"

	"github.com/farmhand-io/farmhand/pkg/storage/postgres"
)

// GetMigrations returns the authorization schema migrations. The
// permission and role catalogs carry no foreign keys and run first;
// the binding table references farms and runs after the farms
// migrations have created it.
func GetMigrations() []postgres.Migration {
	return []postgres.Migration{
		{
			Version:     1,
			Description: "Create permissions catalog table",
			SQL: `
				CREATE TABLE IF NOT EXISTS permissions (
					id BIGSERIAL PRIMARY KEY,
					name VARCHAR(255) NOT NULL UNIQUE,
					created_at TIMESTAMP NOT NULL DEFAULT NOW()
				);
			`,
		},
		{
			Version:     2,
			Description: "Create roles catalog table",
			SQL: `
				CREATE TABLE IF NOT EXISTS roles (
					id BIGSERIAL PRIMARY KEY,
					name VARCHAR(255) NOT NULL UNIQUE,
					description TEXT,
					created_at TIMESTAMP NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMP NOT NULL DEFAULT NOW()
				);
			`,
		},
		{
			Version:     3,
			Description: "Seed permission catalog",
			SQL:         seedPermissionsSQL(),
		},
		{
			Version:     4,
			Description: "Seed role catalog",
			SQL:         seedRolesSQL(),
		},
		{
			Version:     20,
			Description: "Create role_permissions binding table",
			// No unique constraint on the triple: bind is not deduplicated
			// at this layer, set semantics downstream absorb duplicates.
			SQL: `
				CREATE TABLE IF NOT EXISTS role_permissions (
					id BIGSERIAL PRIMARY KEY,
					role_id BIGINT NOT NULL REFERENCES roles(id),
					permission_id BIGINT NOT NULL REFERENCES permissions(id),
					farm_id BIGINT NOT NULL REFERENCES farms(id),
					created_at TIMESTAMP NOT NULL DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_role_permissions_role_farm ON role_permissions(role_id, farm_id);
				CREATE INDEX IF NOT EXISTS idx_role_permissions_farm ON role_permissions(farm_id);
			`,
		},
	}
}

func seedPermissionsSQL() string {
	values := make([]string, 0, len(PermissionCatalog()))
	for _, p := range PermissionCatalog() {
		values = append(values, fmt.Sprintf("('%s')", p))
	}
	return fmt.Sprintf(`
		INSERT INTO permissions (name)
		VALUES %s
		ON CONFLICT (name) DO NOTHING;
	`, strings.Join(values, ",\n\t\t       "))
}

func seedRolesSQL() string {
	values := make([]string, 0, len(RoleCatalog()))
	for _, role := range RoleCatalog() {
		values = append(values, fmt.Sprintf("('%s', '%s')", role.Name, role.Description))
	}
	return fmt.Sprintf(`
		INSERT INTO roles (name, description)
		VALUES %s
		ON CONFLICT (name) DO NOTHING;
	`, strings.Join(values, ",\n\t\t       "))
}
