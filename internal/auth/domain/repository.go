package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Repository is the persistence surface for users. Email lookup is exact and
// case-sensitive.
type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id snowflake.ID) (*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, user *User) error
}

// TokenRepository persists at most one refresh-token row per user.
type TokenRepository interface {
	FindByUser(ctx context.Context, userID snowflake.ID) (*RefreshToken, error)
	FindByToken(ctx context.Context, token string) (*RefreshToken, error)
	Save(ctx context.Context, token *RefreshToken) error
}
