package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/Swevix/WebRGZ/internal/services"
	"github.com/Swevix/WebRGZ/internal/store"
	"github.com/Swevix/WebRGZ/types"
)

const testSecret = "test-secret"

type memoryUserRepo struct {
	nextID int
	users  map[int]types.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{nextID: 1, users: make(map[int]types.User)}
}

func (r *memoryUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *memoryUserRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memoryUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memoryUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	for _, existing := range r.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return types.User{}, store.ErrDuplicate
		}
	}
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return user, nil
}

func (r *memoryUserRepo) UpdatePassword(_ context.Context, id int, passwordHash string) error {
	user, ok := r.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.PasswordHash = passwordHash
	r.users[id] = user
	return nil
}

type memoryTokenRepo struct {
	tokens map[string]types.PasswordResetToken
	users  *memoryUserRepo
}

func (r *memoryTokenRepo) Create(_ context.Context, token types.PasswordResetToken) error {
	r.tokens[token.Token] = token
	return nil
}

func (r *memoryTokenRepo) Redeem(ctx context.Context, token string, window time.Duration, passwordHash string) (int, error) {
	stored, ok := r.tokens[token]
	if !ok || stored.Consumed || time.Since(stored.IssuedAt) > window {
		return 0, store.ErrNotFound
	}
	stored.Consumed = true
	r.tokens[token] = stored
	if err := r.users.UpdatePassword(ctx, stored.UserID, passwordHash); err != nil {
		return 0, err
	}
	return stored.UserID, nil
}

type captureNotifier struct {
	tokens []string
}

func (n *captureNotifier) SendPasswordReset(_ context.Context, _, token string) error {
	n.tokens = append(n.tokens, token)
	return nil
}

func newAuthTestRouter(t *testing.T) (*chi.Mux, *captureNotifier) {
	t.Helper()

	users := newMemoryUserRepo()
	tokens := &memoryTokenRepo{tokens: make(map[string]types.PasswordResetToken), users: users}
	notifier := &captureNotifier{}

	userService := services.NewUserService(users)
	authService := services.NewAuthService(users)
	resetService := services.NewPasswordResetService(users, tokens, notifier, time.Hour)

	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, userService, authService, resetService, testSecret)
	})
	return router, notifier
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func registerTestUser(t *testing.T, router http.Handler, username, email, password string) AuthResponse {
	t.Helper()

	resp := doJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"username": username,
		"email":    email,
		"name":     "Test User",
		"password": password,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var parsed AuthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &parsed))
	require.NotEmpty(t, parsed.Token)
	return parsed
}

func TestRegisterAndLoginByEmail(t *testing.T) {
	router, _ := newAuthTestRouter(t)
	registered := registerTestUser(t, router, "ivan", "ivan@example.com", "secretpass")
	require.Equal(t, services.DefaultRedirect, registered.Next)

	resp := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"identifier": "ivan@example.com",
		"password":   "secretpass",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var parsed AuthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &parsed))
	require.NotEmpty(t, parsed.Token)
	require.Equal(t, registered.User.ID, parsed.User.ID)
	require.Equal(t, services.DefaultRedirect, parsed.Next)
}

func TestLoginByUsernameHonorsNext(t *testing.T) {
	router, _ := newAuthTestRouter(t)
	registerTestUser(t, router, "ivan", "ivan@example.com", "secretpass")

	resp := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"identifier": "ivan",
		"password":   "secretpass",
		"next":       "/listings/blue-sedan",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var parsed AuthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &parsed))
	require.Equal(t, "/listings/blue-sedan", parsed.Next)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router, _ := newAuthTestRouter(t)
	registerTestUser(t, router, "ivan", "ivan@example.com", "secretpass")

	resp := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"identifier": "ivan",
		"password":   "wrongpass",
	})
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"identifier": "nobody",
		"password":   "secretpass",
	})
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	router, _ := newAuthTestRouter(t)
	registerTestUser(t, router, "ivan", "ivan@example.com", "secretpass")

	resp := doJSON(t, router, http.MethodPost, "/auth/register", "", map[string]string{
		"username": "ivan",
		"email":    "other@example.com",
		"password": "secretpass",
	})
	require.Equal(t, http.StatusConflict, resp.Code)
}

func TestMeRequiresToken(t *testing.T) {
	router, _ := newAuthTestRouter(t)
	registered := registerTestUser(t, router, "ivan", "ivan@example.com", "secretpass")

	resp := doJSON(t, router, http.MethodGet, "/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = doJSON(t, router, http.MethodGet, "/auth/me", registered.Token, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var user types.User
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &user))
	require.Equal(t, "ivan", user.Username)
	require.Empty(t, user.PasswordHash)
}

func TestPasswordResetFlow(t *testing.T) {
	router, notifier := newAuthTestRouter(t)
	registerTestUser(t, router, "ivan", "ivan@example.com", "secretpass")

	resp := doJSON(t, router, http.MethodPost, "/auth/password-reset/request", "", map[string]string{
		"email": "ivan@example.com",
	})
	require.Equal(t, http.StatusAccepted, resp.Code)
	require.Len(t, notifier.tokens, 1)

	// Unknown emails answer identically.
	resp = doJSON(t, router, http.MethodPost, "/auth/password-reset/request", "", map[string]string{
		"email": "nobody@example.com",
	})
	require.Equal(t, http.StatusAccepted, resp.Code)
	require.Len(t, notifier.tokens, 1)

	token := notifier.tokens[0]
	resp = doJSON(t, router, http.MethodPost, "/auth/password-reset/confirm", "", map[string]string{
		"token":        token,
		"new_password": "brand-new-pass",
	})
	require.Equal(t, http.StatusNoContent, resp.Code)

	// The token is spent now.
	resp = doJSON(t, router, http.MethodPost, "/auth/password-reset/confirm", "", map[string]string{
		"token":        token,
		"new_password": "another-pass",
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	resp = doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"identifier": "ivan",
		"password":   "brand-new-pass",
	})
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestOptionalAuthPassesAnonymousThrough(t *testing.T) {
	var sawActor int
	handler := OptionalAuth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawActor = actorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, services.AnonymousActor, sawActor)
}

func TestOptionalAuthRejectsMalformedToken(t *testing.T) {
	handler := OptionalAuth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
}
