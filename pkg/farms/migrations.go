package farms

import "github.com/farmhand-io/farmhand/pkg/storage/postgres"

// GetMigrations returns the farm domain schema migrations. Versions
// slot between the role catalog migrations and the role_permissions
// binding table, which references farms.
func GetMigrations() []postgres.Migration {
	return []postgres.Migration{
		{
			Version:     10,
			Description: "Create users table",
			SQL: `
				CREATE TABLE IF NOT EXISTS users (
					id BIGSERIAL PRIMARY KEY,
					username VARCHAR(255) NOT NULL UNIQUE,
					email VARCHAR(255) NOT NULL UNIQUE,
					created_at TIMESTAMP NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMP NOT NULL DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));
			`,
		},
		{
			Version:     11,
			Description: "Create farms table",
			SQL: `
				CREATE TABLE IF NOT EXISTS farms (
					id BIGSERIAL PRIMARY KEY,
					name VARCHAR(255) NOT NULL,
					owner_id BIGINT NOT NULL REFERENCES users(id),
					created_at TIMESTAMP NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMP NOT NULL DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_farms_owner_id ON farms(owner_id);
			`,
		},
		{
			Version:     12,
			Description: "Create farm_members table",
			SQL: `
				CREATE TABLE IF NOT EXISTS farm_members (
					id BIGSERIAL PRIMARY KEY,
					farm_id BIGINT NOT NULL REFERENCES farms(id),
					user_id BIGINT NOT NULL REFERENCES users(id),
					role_id BIGINT NOT NULL REFERENCES roles(id),
					created_at TIMESTAMP NOT NULL DEFAULT NOW(),
					UNIQUE(farm_id, user_id)
				);

				CREATE INDEX IF NOT EXISTS idx_farm_members_farm_id ON farm_members(farm_id);
				CREATE INDEX IF NOT EXISTS idx_farm_members_user_id ON farm_members(user_id);
			`,
		},
		{
			Version:     13,
			Description: "Create invitations table",
			SQL: `
				CREATE TABLE IF NOT EXISTS invitations (
					id BIGSERIAL PRIMARY KEY,
					farm_id BIGINT NOT NULL REFERENCES farms(id),
					email VARCHAR(255) NOT NULL,
					role_id BIGINT NOT NULL REFERENCES roles(id),
					token TEXT NOT NULL UNIQUE,
					invited_by BIGINT NOT NULL REFERENCES users(id),
					created_at TIMESTAMP NOT NULL DEFAULT NOW(),
					expires_at TIMESTAMP NOT NULL
				);

				CREATE INDEX IF NOT EXISTS idx_invitations_farm_id ON invitations(farm_id);
				CREATE INDEX IF NOT EXISTS idx_invitations_email ON invitations(LOWER(email));
				CREATE INDEX IF NOT EXISTS idx_invitations_expires_at ON invitations(expires_at);
			`,
		},
		{
			Version:     14,
			Description: "Create fields table",
			SQL: `
				CREATE TABLE IF NOT EXISTS fields (
					id BIGSERIAL PRIMARY KEY,
					farm_id BIGINT NOT NULL REFERENCES farms(id),
					name VARCHAR(255) NOT NULL,
					area_hectares NUMERIC(10, 2),
					crop VARCHAR(255),
					created_at TIMESTAMP NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMP NOT NULL DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_fields_farm_id ON fields(farm_id);
			`,
		},
		{
			Version:     15,
			Description: "Create tasks table",
			SQL: `
				CREATE TABLE IF NOT EXISTS tasks (
					id BIGSERIAL PRIMARY KEY,
					farm_id BIGINT NOT NULL REFERENCES farms(id),
					field_id BIGINT REFERENCES fields(id),
					title VARCHAR(255) NOT NULL,
					description TEXT,
					status VARCHAR(50) NOT NULL DEFAULT 'open',
					due_date DATE,
					created_at TIMESTAMP NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMP NOT NULL DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_tasks_farm_id ON tasks(farm_id);
				CREATE INDEX IF NOT EXISTS idx_tasks_field_id ON tasks(field_id);
			`,
		},
		{
			Version:     16,
			Description: "Create task_assignees table",
			SQL: `
				CREATE TABLE IF NOT EXISTS task_assignees (
					id BIGSERIAL PRIMARY KEY,
					task_id BIGINT NOT NULL REFERENCES tasks(id),
					user_id BIGINT NOT NULL REFERENCES users(id),
					created_at TIMESTAMP NOT NULL DEFAULT NOW(),
					UNIQUE(task_id, user_id)
				);

				CREATE INDEX IF NOT EXISTS idx_task_assignees_task_id ON task_assignees(task_id);
				CREATE INDEX IF NOT EXISTS idx_task_assignees_user_id ON task_assignees(user_id);
			`,
		},
		{
			Version:     17,
			Description: "Create equipment table",
			SQL: `
				CREATE TABLE IF NOT EXISTS equipment (
					id BIGSERIAL PRIMARY KEY,
					farm_id BIGINT NOT NULL REFERENCES farms(id),
					name VARCHAR(255) NOT NULL,
					kind VARCHAR(100),
					status VARCHAR(50) NOT NULL DEFAULT 'operational',
					created_at TIMESTAMP NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMP NOT NULL DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_equipment_farm_id ON equipment(farm_id);
			`,
		},
		{
			Version:     18,
			Description: "Create seasons table",
			SQL: `
				CREATE TABLE IF NOT EXISTS seasons (
					id BIGSERIAL PRIMARY KEY,
					farm_id BIGINT NOT NULL REFERENCES farms(id),
					name VARCHAR(255) NOT NULL,
					starts_on DATE,
					ends_on DATE,
					created_at TIMESTAMP NOT NULL DEFAULT NOW()
				);

				CREATE INDEX IF NOT EXISTS idx_seasons_farm_id ON seasons(farm_id);
			`,
		},
	}
}
