package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Swevix/WebRGZ/internal/store"
	"github.com/Swevix/WebRGZ/types"
)

// DefaultRedirect is the target handed back after login when the
// caller supplied no usable next target.
const DefaultRedirect = "/listings"

// dummyPasswordHash keeps the bcrypt compare on the code path even
// when no account matches the identifier, so a missing account and a
// wrong password take the same time.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// AuthService resolves a login identifier plus password to a user.
type AuthService struct {
	users UserRepository
}

func NewAuthService(users UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Authenticate resolves the identifier first as an exact email match,
// then as an exact username match, and verifies the password against
// the matched account. Unknown identifier and wrong password both
// yield ErrInvalidCredentials so accounts cannot be enumerated.
func (s *AuthService) Authenticate(ctx context.Context, identifier, password string) (types.User, error) {
	identifier = strings.TrimSpace(identifier)

	user, lookupErr := s.users.GetByEmail(ctx, identifier)
	if errors.Is(lookupErr, store.ErrNotFound) {
		user, lookupErr = s.users.GetByUsername(ctx, identifier)
	}
	if lookupErr != nil && !errors.Is(lookupErr, store.ErrNotFound) {
		return types.User{}, lookupErr
	}

	passwordHash := dummyPasswordHash
	if lookupErr == nil {
		passwordHash = user.PasswordHash
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	if lookupErr != nil || compareErr != nil {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Redirect normalizes the post-login redirect target.
func Redirect(next string) string {
	next = strings.TrimSpace(next)
	if next == "" {
		return DefaultRedirect
	}
	return next
}
