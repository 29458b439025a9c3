package rbac

import (
	"time"
)

// Permission is a named capability from the global catalog.
type Permission string

const (
	PermissionFieldCreate Permission = "FIELD_CREATE"
	PermissionFieldRead   Permission = "FIELD_READ"
	PermissionFieldUpdate Permission = "FIELD_UPDATE"
	PermissionFieldDelete Permission = "FIELD_DELETE"

	PermissionTaskCreate Permission = "TASK_CREATE"
	PermissionTaskRead   Permission = "TASK_READ"
	PermissionTaskUpdate Permission = "TASK_UPDATE"
	PermissionTaskDelete Permission = "TASK_DELETE"

	PermissionEquipmentCreate Permission = "EQUIPMENT_CREATE"
	PermissionEquipmentRead   Permission = "EQUIPMENT_READ"
	PermissionEquipmentUpdate Permission = "EQUIPMENT_UPDATE"
	PermissionEquipmentDelete Permission = "EQUIPMENT_DELETE"

	PermissionSeasonManage Permission = "SEASON_MANAGE"

	PermissionMemberRead   Permission = "MEMBER_READ"
	PermissionMemberManage Permission = "MEMBER_MANAGE"
	PermissionInviteCreate Permission = "INVITE_CREATE"

	PermissionReportView Permission = "REPORT_VIEW"
	PermissionFarmManage Permission = "FARM_MANAGE"
	PermissionRoleManage Permission = "ROLE_MANAGE"
)

// PermissionCatalog returns the fixed universe of permission names.
// The catalog is global reference data, seeded once and never mutated
// at request time; only the binding table changes.
func PermissionCatalog() []Permission {
	return []Permission{
		PermissionFieldCreate,
		PermissionFieldRead,
		PermissionFieldUpdate,
		PermissionFieldDelete,
		PermissionTaskCreate,
		PermissionTaskRead,
		PermissionTaskUpdate,
		PermissionTaskDelete,
		PermissionEquipmentCreate,
		PermissionEquipmentRead,
		PermissionEquipmentUpdate,
		PermissionEquipmentDelete,
		PermissionSeasonManage,
		PermissionMemberRead,
		PermissionMemberManage,
		PermissionInviteCreate,
		PermissionReportView,
		PermissionFarmManage,
		PermissionRoleManage,
	}
}

// Built-in role names
const (
	RoleOwner   = "OWNER"
	RoleManager = "MANAGER"
	RoleWorker  = "WORKER"
	RoleViewer  = "VIEWER"
)

// RoleCatalog returns the built-in role archetypes. Roles are not
// tenant-specific entities; only their permission bindings are.
func RoleCatalog() []Role {
	return []Role{
		{Name: RoleOwner, Description: "Full control over the farm"},
		{Name: RoleManager, Description: "Day-to-day farm management"},
		{Name: RoleWorker, Description: "Executes assigned field work"},
		{Name: RoleViewer, Description: "Read-only access"},
	}
}

// PermissionRecord is a catalog row for a permission name.
type PermissionRecord struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Role is a named archetype from the global role catalog.
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RoleWithBindings is a role together with the permission names bound to
// it within one farm.
type RoleWithBindings struct {
	Role
	Permissions []string `json:"permissions"`
}

// Membership is the (user, farm) -> role relation; at most one row per
// (user, farm) pair. It is the resolver's lookup key.
type Membership struct {
	ID        int64     `json:"id"`
	FarmID    int64     `json:"farm_id"`
	UserID    int64     `json:"user_id"`
	RoleID    int64     `json:"role_id"`
	RoleName  string    `json:"role_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed   bool      `json:"allowed"`
	Reason    string    `json:"reason,omitempty"`
	Role      string    `json:"role,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Deny reasons. Callers need to distinguish these to remediate, so the
// strings are part of the contract.
const (
	ReasonMissingContext = "missing identity or tenant context"
	ReasonNotMember      = "not a member of tenant"
)
