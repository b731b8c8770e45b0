package types

import "time"

// User represents an account in the system. Credentials live in
// PasswordHash; the rest is identity and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Username is the unique login name chosen by the user. It doubles
	// as a login identifier next to Email.
	Username string `json:"username" db:"username"`

	// Email is the user's unique email address. Accepted as a login
	// identifier and used for password-reset mail.
	Email string `json:"email" db:"email"`

	// Name is the user's display name.
	Name string `json:"name" db:"name"`

	// Role is the authorization level, "user" or "admin". Admins may
	// bulk-change publication status and manage reference data.
	Role string `json:"role" db:"role"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// Never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent account update.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
