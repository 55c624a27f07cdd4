package models

import "time"

// Group represents a study group.
type Group struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	OwnerID   int       `db:"owner_id" json:"owner_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Group member roles.
const (
	RoleAdmin     = "Admin"
	RoleMember    = "Member"
	RoleNonMember = "non-member"
)

// GroupMember is a membership row joined with the member's profile.
type GroupMember struct {
	GroupID int    `db:"group_id" json:"group_id"`
	UserID  int    `db:"user_id" json:"user_id"`
	Role    string `db:"role" json:"role"`
	Name    string `db:"name" json:"name"`
	Email   string `db:"email" json:"email"`
}
