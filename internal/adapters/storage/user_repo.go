package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/lcalzada-xor/blemap/internal/core/domain"
	"github.com/lcalzada-xor/blemap/internal/core/ports"
)

var _ ports.UserRepository = (*SQLiteAdapter)(nil)

var ErrUserNotFound = errors.New("user not found")

// Create persists a new operator account.
func (a *SQLiteAdapter) Create(ctx context.Context, user *domain.User) error {
	return a.db.WithContext(ctx).Create(user).Error
}

// GetByUsername retrieves a user by their username.
func (a *SQLiteAdapter) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := a.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by their ID.
func (a *SQLiteAdapter) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := a.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CountUsers returns the number of registered accounts.
func (a *SQLiteAdapter) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := a.db.WithContext(ctx).Model(&domain.User{}).Count(&count).Error
	return count, err
}
