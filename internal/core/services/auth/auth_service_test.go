package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcalzada-xor/blemap/internal/core/domain"
)

type memoryUserRepo struct {
	users map[string]*domain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]*domain.User)}
}

func (r *memoryUserRepo) Create(ctx context.Context, u *domain.User) error {
	r.users[u.Username] = u
	return nil
}

func (r *memoryUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (r *memoryUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *memoryUserRepo) CountUsers(ctx context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

func seedUser(t *testing.T, repo *memoryUserRepo, username, password string, role domain.Role) {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), &domain.User{
		ID:           "user-" + username,
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}))
}

func TestLogin(t *testing.T) {
	repo := newMemoryUserRepo()
	seedUser(t, repo, "operator", "hunter2hunter2", domain.RoleOperator)
	svc := NewAuthService(repo)
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		token, err := svc.Login(ctx, domain.Credentials{Username: "operator", Password: "hunter2hunter2"})
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		user, err := svc.ValidateToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "operator", user.Username)
		assert.Equal(t, domain.RoleOperator, user.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, domain.Credentials{Username: "operator", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user gets the same error", func(t *testing.T) {
		_, err := svc.Login(ctx, domain.Credentials{Username: "nobody", Password: "x"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLogin_RateLimited(t *testing.T) {
	repo := newMemoryUserRepo()
	seedUser(t, repo, "operator", "hunter2hunter2", domain.RoleOperator)
	svc := NewAuthService(repo)
	ctx := context.Background()

	for i := 0; i < maxLoginAttempts; i++ {
		_, err := svc.Login(ctx, domain.Credentials{Username: "operator", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	// Even the right password is refused once the account is locked out.
	_, err := svc.Login(ctx, domain.Credentials{Username: "operator", Password: "hunter2hunter2"})
	assert.ErrorIs(t, err, ErrRateLimitExceeded)
}

func TestLogin_SuccessResetsAttempts(t *testing.T) {
	repo := newMemoryUserRepo()
	seedUser(t, repo, "operator", "hunter2hunter2", domain.RoleOperator)
	svc := NewAuthService(repo)
	ctx := context.Background()

	for i := 0; i < maxLoginAttempts-1; i++ {
		svc.Login(ctx, domain.Credentials{Username: "operator", Password: "wrong"})
	}
	_, err := svc.Login(ctx, domain.Credentials{Username: "operator", Password: "hunter2hunter2"})
	require.NoError(t, err)

	// The counter is cleared, so failures start from zero again.
	for i := 0; i < maxLoginAttempts-1; i++ {
		_, err := svc.Login(ctx, domain.Credentials{Username: "operator", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
}

func TestValidateToken(t *testing.T) {
	repo := newMemoryUserRepo()
	seedUser(t, repo, "operator", "hunter2hunter2", domain.RoleOperator)
	svc := NewAuthService(repo)
	ctx := context.Background()

	t.Run("unknown token", func(t *testing.T) {
		_, err := svc.ValidateToken(ctx, "no-such-token")
		assert.ErrorIs(t, err, ErrInvalidSession)
	})

	t.Run("expired token", func(t *testing.T) {
		svc.sessionTTL = -time.Minute
		token, err := svc.Login(ctx, domain.Credentials{Username: "operator", Password: "hunter2hunter2"})
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrTokenExpired)

		// The expired session is dropped, so the token is now unknown.
		_, err = svc.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	})
}

func TestLogout(t *testing.T) {
	repo := newMemoryUserRepo()
	seedUser(t, repo, "operator", "hunter2hunter2", domain.RoleOperator)
	svc := NewAuthService(repo)
	ctx := context.Background()

	token, err := svc.Login(ctx, domain.Credentials{Username: "operator", Password: "hunter2hunter2"})
	require.NoError(t, err)

	svc.Logout(ctx, token)
	_, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	// Hashing is salted; two hashes of the same input differ.
	other, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)
}
