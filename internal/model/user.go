package model

import "time"

// Roles recognised by the backend. Stored in the users.role column and in
// the "role" claim of issued access tokens.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// ValidRole reports whether s is one of the recognised roles.
func ValidRole(s string) bool {
	return s == RoleAdmin || s == RoleUser
}

// User mirrors the users table. Passwords are stored as bcrypt hashes and
// never leave the repository layer.
//
// Fields:
//  ID           – primary key (uuid).
//  FirstName    – given name.
//  LastName     – family name.
//  Email        – unique, stored lower-cased.
//  PasswordHash – bcrypt hash of the password.
//  Role         – Admin or User.
//  PhoneNumber  – optional contact number.
//  IsActive     – deactivated accounts cannot log in.
//  CreatedAt    – creation timestamp (UTC).
//  UpdatedAt    – last update timestamp (UTC).
type User struct {
	ID           string    // users.id
	FirstName    string    // users.first_name
	LastName     string    // users.last_name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	PhoneNumber  *string   // users.phone_number (nullable)
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// FullName joins first and last name for display fields on reservation views.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
