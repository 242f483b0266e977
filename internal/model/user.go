package model

import "time"

// Roles carried in the JWT "role" claim.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents an application user record as stored in the `users`
// table.  Users author ads, bookings and comments.  PasswordHash never
// leaves the server.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Email        – unique email address (lower-cased).
//	PasswordHash – bcrypt hashed password.
//	FirstName    – given name shown next to ads and comments.
//	LastName     – family name.
//	Role         – USER or ADMIN.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserSummary is the public view of a user embedded as "author" in other
// resources.
type UserSummary struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Summary returns the public view of u.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName}
}

// IsAdmin reports whether role grants admin rights.
func IsAdmin(role string) bool { return role == RoleAdmin }
