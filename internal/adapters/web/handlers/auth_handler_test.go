package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/blemap/internal/adapters/web/middleware"
	"github.com/lcalzada-xor/blemap/internal/core/domain"
	"github.com/lcalzada-xor/blemap/internal/core/services/auth"
)

type stubUserRepo struct {
	user *domain.User
}

func (r *stubUserRepo) Create(ctx context.Context, u *domain.User) error { return nil }

func (r *stubUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if r.user != nil && r.user.Username == username {
		return r.user, nil
	}
	return nil, auth.ErrInvalidCredentials
}

func (r *stubUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if r.user != nil && r.user.ID == id {
		return r.user, nil
	}
	return nil, auth.ErrInvalidSession
}

func (r *stubUserRepo) CountUsers(ctx context.Context) (int64, error) { return 1, nil }

func newAuthFixture(t *testing.T) (*AuthHandler, *auth.AuthService) {
	t.Helper()
	hash, err := auth.HashPassword("hunter2hunter2")
	require.NoError(t, err)
	repo := &stubUserRepo{user: &domain.User{
		ID:           "u-1",
		Username:     "operator",
		PasswordHash: hash,
		Role:         domain.RoleOperator,
	}}
	svc := auth.NewAuthService(repo)
	return NewAuthHandler(svc), svc
}

func TestLogin_Endpoint(t *testing.T) {
	h, _ := newAuthFixture(t)

	t.Run("valid credentials set the session cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/login", jsonBody(t, map[string]string{
			"username": "operator",
			"password": "hunter2hunter2",
		}))
		h.HandleLogin(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "auth_token", cookies[0].Name)
		assert.NotEmpty(t, cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/login", jsonBody(t, map[string]string{
			"username": "operator",
			"password": "wrong",
		}))
		h.HandleLogin(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewBufferString("{nope"))
		h.HandleLogin(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("lockout maps to 429", func(t *testing.T) {
		h, _ := newAuthFixture(t)
		for i := 0; i < 5; i++ {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/login", jsonBody(t, map[string]string{
				"username": "operator",
				"password": "wrong",
			}))
			h.HandleLogin(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		}

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/login", jsonBody(t, map[string]string{
			"username": "operator",
			"password": "hunter2hunter2",
		}))
		h.HandleLogin(rec, req)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})
}

func TestLogout_Endpoint(t *testing.T) {
	h, svc := newAuthFixture(t)
	ctx := context.Background()

	token, err := svc.Login(ctx, domain.Credentials{Username: "operator", Password: "hunter2hunter2"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
	h.HandleLogout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Negative(t, cookies[0].MaxAge, "session cookie is cleared")

	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, auth.ErrInvalidSession)
}

func TestMe_Endpoint(t *testing.T) {
	h, _ := newAuthFixture(t)

	t.Run("authenticated", func(t *testing.T) {
		user := &domain.User{ID: "u-1", Username: "operator", Role: domain.RoleOperator}
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req = req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, user))

		rec := httptest.NewRecorder()
		h.HandleMe(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "operator", body["username"])
		// The password hash must never serialize.
		assert.NotContains(t, rec.Body.String(), "PasswordHash")
	})

	t.Run("no user in context", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.HandleMe(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(v))
	return &buf
}
