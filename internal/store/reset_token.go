package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Swevix/WebRGZ/types"
)

// ResetTokenRepository handles persistence for password-reset tokens.
type ResetTokenRepository struct {
	db *sql.DB
}

func NewResetTokenRepository(db *sql.DB) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

// Create persists a freshly issued token.
func (r *ResetTokenRepository) Create(ctx context.Context, token types.PasswordResetToken) error {
	const query = `
		INSERT INTO password_reset_tokens (token, user_id, issued_at, consumed)
		VALUES ($1, $2, $3, FALSE)`
	_, err := r.db.ExecContext(ctx, query, token.Token, token.UserID, token.IssuedAt)
	return err
}

// Redeem consumes a token and replaces the owner's credential hash in
// one transaction. A token that is unknown, already consumed, or older
// than window yields ErrNotFound. The row lock on the token makes the
// check-then-consume atomic, so a second Redeem with the same token
// always fails.
func (r *ResetTokenRepository) Redeem(ctx context.Context, token string, window time.Duration, passwordHash string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const selectQuery = `
		SELECT user_id, issued_at, consumed
		FROM password_reset_tokens
		WHERE token = $1
		FOR UPDATE`
	var userID int
	var issuedAt time.Time
	var consumed bool
	err = tx.QueryRowContext(ctx, selectQuery, token).Scan(&userID, &issuedAt, &consumed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	if consumed || time.Since(issuedAt) > window {
		return 0, ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE password_reset_tokens SET consumed = TRUE WHERE token = $1`, token); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`,
		passwordHash, time.Now(), userID); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return userID, nil
}
