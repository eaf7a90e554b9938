package model

import "time"

// Role is the closed set of account roles. Keeping it a named type (rather
// than comparing raw strings in handlers) means the admin gate and the token
// codec always agree on the marker values.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole maps a raw string onto a Role. Unknown or empty input falls back
// to RoleUser; ok reports whether the input was one of the known markers.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return RoleUser, false
}

// User mirrors the `users` table. IDs are uuid strings generated by the
// repository on insert. Nullable columns map to pointer fields.
//
// RefreshToken holds at most one live value: issuing a new session overwrites
// the previous one, which is the deliberate one-session-per-user policy.
type User struct {
	ID                     string     // users.id (char 36)
	Name                   string     // users.name
	Username               string     // users.username (unique, lowercase)
	Email                  string     // users.email (unique, lowercase)
	PasswordHash           string     // users.password_hash (bcrypt)
	Role                   Role       // users.role
	Image                  *string    // users.image (nullable avatar URL)
	EmailVerified          bool       // users.email_verified
	EmailVerifiedAt        *time.Time // users.email_verified_at (nullable)
	EmailVerificationToken *string    // users.email_verification_token (nullable, single use)
	RefreshToken           *string    // users.refresh_token (nullable)
	CreatedAt              time.Time  // users.created_at
	UpdatedAt              time.Time  // users.updated_at
}
