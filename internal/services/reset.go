package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Swevix/WebRGZ/internal/store"
	"github.com/Swevix/WebRGZ/types"
)

// ResetTokenRepository defines persistence operations for reset tokens.
type ResetTokenRepository interface {
	Create(ctx context.Context, token types.PasswordResetToken) error
	Redeem(ctx context.Context, token string, window time.Duration, passwordHash string) (int, error)
}

// ResetNotifier dispatches a reset token to the account's email
// out-of-band. Implementations live outside the core (MQ, log).
type ResetNotifier interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}

// PasswordResetService implements the single-use reset-token protocol:
// Requested -> Issued -> (Confirmed | Expired), no loop-backs.
type PasswordResetService struct {
	users    UserRepository
	tokens   ResetTokenRepository
	notifier ResetNotifier
	window   time.Duration
}

func NewPasswordResetService(users UserRepository, tokens ResetTokenRepository, notifier ResetNotifier, window time.Duration) *PasswordResetService {
	if window <= 0 {
		window = time.Hour
	}
	return &PasswordResetService{
		users:    users,
		tokens:   tokens,
		notifier: notifier,
		window:   window,
	}
}

// Request issues a reset token for the account behind email and hands
// it to the notifier. The outcome is identical whether or not the
// email matches an account, so existence never leaks.
func (s *PasswordResetService) Request(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	token, err := newResetToken()
	if err != nil {
		return err
	}
	if err := s.tokens.Create(ctx, types.PasswordResetToken{
		Token:    token,
		UserID:   user.ID,
		IssuedAt: time.Now(),
	}); err != nil {
		return err
	}
	return s.notifier.SendPasswordReset(ctx, user.Email, token)
}

// Confirm redeems a token and replaces the account password. Unknown,
// consumed and expired tokens all fail with ErrInvalidToken; a token
// redeems at most once.
func (s *PasswordResetService) Confirm(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if _, err := s.tokens.Redeem(ctx, token, s.window, string(hashed)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	return nil
}

func newResetToken() (string, error) {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf[:]), nil
}
