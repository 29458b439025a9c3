package farms

import (
	"context"
	"time"

	"github.com/farmhand-io/farmhand/pkg/auth"
)

const (
	// MaxFarmsPerOwner caps how many farms a single user may own.
	MaxFarmsPerOwner = 3

	// MinFarmNameLength is the minimum farm name length in runes.
	MinFarmNameLength = 3
)

// Farm represents a tenant
type Farm struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Member represents a farm membership joined with user and role details
type Member struct {
	ID       int64     `json:"id"`
	FarmID   int64     `json:"farm_id"`
	UserID   int64     `json:"user_id"`
	Username string    `json:"username"`
	Email    string    `json:"email,omitempty"`
	RoleID   int64     `json:"role_id"`
	RoleName string    `json:"role_name"`
	JoinedAt time.Time `json:"joined_at"`
}

// Invitation represents a pending invitation to join a farm
type Invitation struct {
	ID        int64     `json:"id"`
	FarmID    int64     `json:"farm_id"`
	Email     string    `json:"email"`
	RoleID    int64     `json:"role_id"`
	Token     string    `json:"token,omitempty"`
	InvitedBy int64     `json:"invited_by"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PendingInvitation is an invitation as seen by the invited user,
// denormalized with farm and role names.
type PendingInvitation struct {
	ID        int64     `json:"id"`
	FarmID    int64     `json:"farm_id"`
	FarmName  string    `json:"farm_name"`
	RoleName  string    `json:"role_name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// VerifyStatus describes what accepting a token would do
type VerifyStatus string

const (
	// VerifyRegistrationRequired means no account exists for the
	// invited email yet.
	VerifyRegistrationRequired VerifyStatus = "registration_required"
	// VerifyAlreadyProcessed means the invited user is already a
	// member of the farm.
	VerifyAlreadyProcessed VerifyStatus = "already_processed"
	// VerifyReadyToAccept means the invitation can be accepted as-is.
	VerifyReadyToAccept VerifyStatus = "ready_to_accept"
)

// VerifyResult is the outcome of a read-only invitation probe
type VerifyResult struct {
	Status    VerifyStatus `json:"status"`
	FarmID    int64        `json:"farm_id"`
	FarmName  string       `json:"farm_name"`
	RoleName  string       `json:"role_name"`
	Email     string       `json:"email"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// AcceptStatus describes the outcome of accepting an invitation
type AcceptStatus string

const (
	AcceptJoined        AcceptStatus = "joined"
	AcceptAlreadyMember AcceptStatus = "already_member"
)

// AcceptResult is the outcome of accepting an invitation
type AcceptResult struct {
	Status   AcceptStatus `json:"status"`
	FarmID   int64        `json:"farm_id"`
	RoleName string       `json:"role_name"`
}

// CreateFarmRequest represents a request to create a farm
type CreateFarmRequest struct {
	Name string `json:"name"`
}

// RenameFarmRequest represents a request to rename a farm
type RenameFarmRequest struct {
	Name string `json:"name"`
}

// AddMemberRequest represents a request to add an existing user as a member
type AddMemberRequest struct {
	UserID int64 `json:"user_id"`
	RoleID int64 `json:"role_id"`
}

// UpdateMemberRequest represents a request to change a member's role
type UpdateMemberRequest struct {
	RoleID int64 `json:"role_id"`
}

// InviteRequest represents a request to invite someone by email
type InviteRequest struct {
	Email  string `json:"email"`
	RoleID int64  `json:"role_id"`
}

// AcceptRequest carries the invitation token being accepted
type AcceptRequest struct {
	Token string `json:"token"`
}

// Service defines the interface for farm, membership, and invitation
// management
type Service interface {
	// Farm lifecycle
	CreateFarm(ctx context.Context, ownerID int64, name string) (*Farm, error)
	GetFarm(ctx context.Context, id int64) (*Farm, error)
	ListFarms(ctx context.Context, userID int64) ([]*Farm, error)
	RenameFarm(ctx context.Context, farmID, requesterID int64, name string) (*Farm, error)
	DeleteFarm(ctx context.Context, farmID, requesterID int64) error

	// Membership
	ListMembers(ctx context.Context, farmID int64) ([]*Member, error)
	AddMember(ctx context.Context, farmID, userID, roleID int64) error
	UpdateMemberRole(ctx context.Context, farmID, userID, roleID, requesterID int64) error
	RemoveMember(ctx context.Context, farmID, userID, requesterID int64) error
	Leave(ctx context.Context, farmID, userID int64) error

	// Invitations
	CreateInvitation(ctx context.Context, farmID int64, email string, roleID, invitedBy int64) (*Invitation, error)
	VerifyInvitation(ctx context.Context, token string) (*VerifyResult, error)
	AcceptInvitation(ctx context.Context, token string, identity auth.Identity) (*AcceptResult, error)
	GetPendingInvitationsByEmail(ctx context.Context, email string) ([]*PendingInvitation, error)
	ListInvitations(ctx context.Context, farmID int64) ([]*Invitation, error)
	RevokeInvitation(ctx context.Context, farmID, invitationID int64) error
	CleanupExpiredInvitations(ctx context.Context) (int64, error)
}
