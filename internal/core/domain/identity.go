package domain

import "time"

// UserStatus enumerates possible account states.
type UserStatus string

const (
	UserStatusInvited  UserStatus = "invited"
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// User mirrors the persisted representation in the users table. TenantID is
// nil for platform administrators, who may act across tenants. The active
// timer is embedded on the user so its at-most-one invariant is structural.
type User struct {
	ID           string
	TenantID     *string
	Email        string
	DisplayName  string
	Status       UserStatus
	IsTechnician bool
	ActiveTimer  *ActiveTimer
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PlatformAdmin reports whether the user belongs to no tenant and therefore
// operates at platform scope.
func (u *User) PlatformAdmin() bool {
	return u.TenantID == nil
}
