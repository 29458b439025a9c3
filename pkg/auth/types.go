package auth

import "time"

// User represents a user account. Accounts are created at signup by the
// authentication subsystem and never deleted here.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Identity is the authenticated caller attached to each privileged
// request by the identity middleware. It is trusted as given.
type Identity struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
}
