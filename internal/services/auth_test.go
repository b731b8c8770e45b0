package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Swevix/WebRGZ/types"
)

func seedUser(t *testing.T, repo *fakeUserRepo, username, email, password string) types.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user, err := repo.Create(context.Background(), types.User{
		Username:     username,
		Email:        email,
		Role:         "user",
		PasswordHash: string(hashed),
	})
	require.NoError(t, err)
	return user
}

func TestAuthenticateByEmail(t *testing.T) {
	repo := newFakeUserRepo()
	seeded := seedUser(t, repo, "ivan", "ivan@example.com", "secretpass")
	svc := NewAuthService(repo)

	user, err := svc.Authenticate(context.Background(), "ivan@example.com", "secretpass")
	require.NoError(t, err)
	require.Equal(t, seeded.ID, user.ID)
}

func TestAuthenticateByUsername(t *testing.T) {
	repo := newFakeUserRepo()
	seeded := seedUser(t, repo, "ivan", "ivan@example.com", "secretpass")
	svc := NewAuthService(repo)

	user, err := svc.Authenticate(context.Background(), "ivan", "secretpass")
	require.NoError(t, err)
	require.Equal(t, seeded.ID, user.ID)
}

func TestAuthenticateEmailTakesPrecedence(t *testing.T) {
	repo := newFakeUserRepo()
	// One account's username equals another account's email.
	byEmail := seedUser(t, repo, "first", "shared@example.com", "emailpass")
	seedUser(t, repo, "shared@example.com", "other@example.com", "userpass")
	svc := NewAuthService(repo)

	user, err := svc.Authenticate(context.Background(), "shared@example.com", "emailpass")
	require.NoError(t, err)
	require.Equal(t, byEmail.ID, user.ID)
}

func TestAuthenticateUniformFailure(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "ivan", "ivan@example.com", "secretpass")
	svc := NewAuthService(repo)

	_, err := svc.Authenticate(context.Background(), "ivan", "wrongpass")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody", "secretpass")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRedirect(t *testing.T) {
	require.Equal(t, DefaultRedirect, Redirect(""))
	require.Equal(t, DefaultRedirect, Redirect("   "))
	require.Equal(t, "/listings/blue-sedan", Redirect("/listings/blue-sedan"))
}

func TestChangePassword(t *testing.T) {
	repo := newFakeUserRepo()
	seeded := seedUser(t, repo, "ivan", "ivan@example.com", "secretpass")
	svc := NewUserService(repo)

	require.ErrorIs(t,
		svc.ChangePassword(context.Background(), seeded.ID, "wrongpass", "newsecret1"),
		ErrInvalidCredentials)
	require.ErrorIs(t,
		svc.ChangePassword(context.Background(), seeded.ID, "secretpass", "short"),
		ErrValidation)
	require.NoError(t,
		svc.ChangePassword(context.Background(), seeded.ID, "secretpass", "newsecret1"))

	updated, err := repo.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("newsecret1")))
}
