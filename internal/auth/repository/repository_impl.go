package repository

import (
	"context"
	"errors"

	"github.com/atriumhq/atrium/internal/auth/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

type tokenRepository struct {
	db *gorm.DB
}

// New builds the user and refresh-token repositories over one connection pool.
func New(db *gorm.DB) (domain.Repository, domain.TokenRepository) {
	return &userRepository{db: db}, &tokenRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id snowflake.ID) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) Delete(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&domain.RefreshToken{}).Error; err != nil {
			return err
		}
		// Organizations the user created survive with a nulled creator;
		// their memberships go with the account.
		if err := tx.Table("organizations").Where("created_by = ?", user.ID).Update("created_by", nil).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM organization_members WHERE user_id = ?", user.ID).Error; err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
}

func (r *tokenRepository) FindByUser(ctx context.Context, userID snowflake.ID) (*domain.RefreshToken, error) {
	var row domain.RefreshToken
	err := r.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *tokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	var row domain.RefreshToken
	err := r.db.WithContext(ctx).Preload("User").First(&row, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *tokenRepository) Save(ctx context.Context, token *domain.RefreshToken) error {
	return r.db.WithContext(ctx).Save(token).Error
}
