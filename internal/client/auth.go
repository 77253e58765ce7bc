package client

import (
	"context"
	"net/http"
	"sync"

	"todo-manager/internal/models"
)

// AuthStore caches the authenticated user and token.
type AuthStore struct {
	client *Client

	mu      sync.RWMutex
	user    *models.User
	loading bool
	err     string
}

func NewAuthStore(c *Client) *AuthStore {
	return &AuthStore{client: c}
}

type authPayload struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (s *AuthStore) Register(ctx context.Context, name, email, password, passwordConfirmation string) error {
	s.begin()
	var payload authPayload
	err := s.client.do(ctx, http.MethodPost, "/api/register", nil, map[string]string{
		"name":                  name,
		"email":                 email,
		"password":              password,
		"password_confirmation": passwordConfirmation,
	}, &payload)
	if err != nil {
		s.fail(err, "Registration failed")
		return err
	}

	s.client.SetToken(payload.Token)
	s.mu.Lock()
	s.user = payload.User
	s.loading = false
	s.mu.Unlock()
	return nil
}

func (s *AuthStore) Login(ctx context.Context, email, password string) error {
	s.begin()
	var payload authPayload
	err := s.client.do(ctx, http.MethodPost, "/api/login", nil, map[string]string{
		"email":    email,
		"password": password,
	}, &payload)
	if err != nil {
		s.fail(err, "Login failed")
		return err
	}

	s.client.SetToken(payload.Token)
	s.mu.Lock()
	s.user = payload.User
	s.loading = false
	s.mu.Unlock()
	return nil
}

// Logout revokes the current token server-side, then drops local state. Local
// state is cleared even when the server call fails, matching the UI behavior
// of always returning to the login screen.
func (s *AuthStore) Logout(ctx context.Context) error {
	err := s.client.do(ctx, http.MethodPost, "/api/logout", nil, nil, nil)

	s.client.SetToken("")
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	return err
}

func (s *AuthStore) FetchUser(ctx context.Context) error {
	s.begin()
	var user models.User
	if err := s.client.do(ctx, http.MethodGet, "/api/me", nil, nil, &user); err != nil {
		s.fail(err, "Failed to fetch user")
		return err
	}

	s.mu.Lock()
	s.user = &user
	s.loading = false
	s.mu.Unlock()
	return nil
}

func (s *AuthStore) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *AuthStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *AuthStore) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *AuthStore) begin() {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()
}

func (s *AuthStore) fail(err error, fallback string) {
	message := fallback
	if apiErr, ok := err.(*APIError); ok && apiErr.Message != "" {
		message = apiErr.Message
	}
	s.mu.Lock()
	s.loading = false
	s.err = message
	s.mu.Unlock()
}
