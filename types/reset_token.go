package types

import "time"

// PasswordResetToken is a single-use credential-reset capability with a
// bounded validity window. Expired tokens are simply invalid; they are
// not purged synchronously.
type PasswordResetToken struct {
	// Token is the opaque token value handed to the user out-of-band.
	Token string `json:"-" db:"token"`

	// UserID is the account the token can reset.
	UserID int `json:"user_id" db:"user_id"`

	// IssuedAt is the timestamp at which the token was issued. Validity
	// is measured from this instant.
	IssuedAt time.Time `json:"issued_at" db:"issued_at"`

	// Consumed marks a redeemed token. A consumed token never validates
	// again.
	Consumed bool `json:"consumed" db:"consumed"`
}
