package rbac

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/farmhand-io/farmhand/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper to create a store backed by sqlmock
func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewStore(db), mock, db
}

func TestListPermissions(t *testing.T) {
	store, mock, db := newMockStore(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "created_at"}).
		AddRow(1, "FIELD_CREATE", now).
		AddRow(2, "FIELD_READ", now)

	mock.ExpectQuery(`SELECT id, name, created_at\s+FROM permissions`).
		WillReturnRows(rows)

	permissions, err := store.ListPermissions(context.Background())
	require.NoError(t, err)
	assert.Len(t, permissions, 2)
	assert.Equal(t, "FIELD_CREATE", permissions[0].Name)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRoleByName(t *testing.T) {
	store, mock, db := newMockStore(t)
	defer db.Close()

	t.Run("found", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`SELECT id, name, description, created_at, updated_at FROM roles WHERE name = \$1`).
			WithArgs("OWNER").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at", "updated_at"}).
				AddRow(1, "OWNER", "Full control over the farm", now, now))

		role, err := store.GetRoleByName(context.Background(), "OWNER")
		require.NoError(t, err)
		assert.Equal(t, int64(1), role.ID)
		assert.Equal(t, "OWNER", role.Name)
	})

	t.Run("missing role is NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT id, name, description, created_at, updated_at FROM roles WHERE name = \$1`).
			WithArgs("GHOST").
			WillReturnError(sql.ErrNoRows)

		_, err := store.GetRoleByName(context.Background(), "GHOST")
		assert.True(t, apperr.IsNotFound(err))
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRolesWithBindings(t *testing.T) {
	store, mock, db := newMockStore(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, name, description, created_at, updated_at\s+FROM roles`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at", "updated_at"}).
			AddRow(1, "OWNER", "", now, now).
			AddRow(2, "WORKER", "", now, now))

	// Duplicate OWNER/FIELD_CREATE binding collapses to one grant.
	mock.ExpectQuery(`SELECT rp.role_id, p.name\s+FROM role_permissions rp`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"role_id", "name"}).
			AddRow(1, "FIELD_CREATE").
			AddRow(1, "FIELD_CREATE").
			AddRow(1, "FIELD_READ"))

	roles, err := store.ListRolesWithBindings(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, roles, 2)

	assert.Equal(t, "OWNER", roles[0].Name)
	assert.Equal(t, []string{"FIELD_CREATE", "FIELD_READ"}, roles[0].Permissions)

	assert.Equal(t, "WORKER", roles[1].Name)
	assert.Empty(t, roles[1].Permissions)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBind(t *testing.T) {
	store, mock, db := newMockStore(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO role_permissions \(role_id, permission_id, farm_id\)`).
		WithArgs(int64(1), int64(3), int64(7)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.Bind(context.Background(), 1, 3, 7)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnbind(t *testing.T) {
	store, mock, db := newMockStore(t)
	defer db.Close()

	t.Run("removes one binding", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM role_permissions`).
			WithArgs(int64(1), int64(3), int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.Unbind(context.Background(), 1, 3, 7))
	})

	t.Run("no-op when absent", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM role_permissions`).
			WithArgs(int64(1), int64(3), int64(8)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, store.Unbind(context.Background(), 1, 3, 8))
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMembership(t *testing.T) {
	store, mock, db := newMockStore(t)
	defer db.Close()

	t.Run("found", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`SELECT fm.id, fm.farm_id, fm.user_id, fm.role_id, r.name, fm.created_at`).
			WithArgs(int64(10), int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "farm_id", "user_id", "role_id", "name", "created_at"}).
				AddRow(1, 7, 10, 2, "WORKER", now))

		m, err := store.GetMembership(context.Background(), 10, 7)
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, "WORKER", m.RoleName)
		assert.Equal(t, int64(2), m.RoleID)
	})

	t.Run("absent yields nil without error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT fm.id, fm.farm_id, fm.user_id, fm.role_id, r.name, fm.created_at`).
			WithArgs(int64(99), int64(7)).
			WillReturnError(sql.ErrNoRows)

		m, err := store.GetMembership(context.Background(), 99, 7)
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRolePermissions(t *testing.T) {
	store, mock, db := newMockStore(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT DISTINCT p.name\s+FROM role_permissions rp`).
		WithArgs(int64(2), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).
			AddRow("FIELD_READ").
			AddRow("TASK_READ"))

	names, err := store.GetRolePermissions(context.Background(), 2, 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"FIELD_READ", "TASK_READ"}, names)

	require.NoError(t, mock.ExpectationsWereMet())
}
