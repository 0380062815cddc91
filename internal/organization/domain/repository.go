package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository is the persistence surface for organizations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, org *Organization) error
	FindBySlug(ctx context.Context, slug string) (*Organization, error)
	// FindByName matches case-insensitively; no two active organizations
	// share a name modulo case.
	FindByName(ctx context.Context, name string) (*Organization, error)
	Update(ctx context.Context, org *Organization) error
	Delete(ctx context.Context, org *Organization) error
	CountCreatedBy(ctx context.Context, userID snowflake.ID) (int64, error)
	ListByUser(ctx context.Context, userID snowflake.ID) ([]Organization, error)
}

// MemberRepository is the persistence surface for organization membership.
// Lookups return (nil, nil) when no row exists so callers distinguish absence
// from storage failure.
type MemberRepository interface {
	WithTx(tx *gorm.DB) MemberRepository
	Add(ctx context.Context, member *OrgMember) error
	Get(ctx context.Context, orgID, userID snowflake.ID) (*OrgMember, error)
	List(ctx context.Context, orgID snowflake.ID) ([]OrgMember, error)
	Update(ctx context.Context, member *OrgMember) error
	Delete(ctx context.Context, member *OrgMember) error
}
