package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/hrlmwn/feedgram/internal/models"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateUsername = errors.New("username already registered")
)

// UserRepo is the keyed CRUD surface over the account store. Uniqueness of
// email and username is enforced by the database indexes; Create maps index
// violations to field-specific errors so handlers can answer with a 400
// instead of a generic 500.
type UserRepo struct {
	DB *gorm.DB
}

func (r *UserRepo) ByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) ByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	if err := r.DB.WithContext(ctx).Create(user).Error; err != nil {
		return translateDuplicate(err)
	}
	return nil
}

// Update applies an atomic partial update to a single account row.
func (r *UserRepo) Update(ctx context.Context, id string, fields map[string]any) error {
	result := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// translateDuplicate inspects a unique-index violation to name the offending
// field. Postgres reports the index name (users_email_key), sqlite the column
// (users.email); both carry the field name in the message.
func translateDuplicate(err error) error {
	msg := err.Error()
	isDup := errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
	if !isDup {
		return err
	}
	if strings.Contains(msg, "email") {
		return ErrDuplicateEmail
	}
	if strings.Contains(msg, "username") {
		return ErrDuplicateUsername
	}
	return err
}
