package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Service is the organization surface exposed to the HTTP layer. Callers are
// expected to have passed the relevant permission gates first.
type Service interface {
	Create(ctx context.Context, userID snowflake.ID, req CreateOrganizationRequest) (*Organization, error)
	GetBySlug(ctx context.Context, slug string) (*Organization, error)
	ListByUser(ctx context.Context, userID snowflake.ID) ([]Organization, error)
	Update(ctx context.Context, slug string, req UpdateOrganizationRequest) (*Organization, error)
	Delete(ctx context.Context, slug string) error

	CreateInviteLink(ctx context.Context, slug string, role Role) (string, error)
	RevokeInviteLink(ctx context.Context, slug string) (*Organization, error)
	Join(ctx context.Context, slugToken, roleToken, email string) (*OrgMember, error)

	GetMember(ctx context.Context, slug string, userID snowflake.ID) (*OrgMember, error)
	ListMembers(ctx context.Context, slug string) ([]OrgMember, error)
	UpdateMemberRole(ctx context.Context, slug string, userID snowflake.ID, role Role) (*OrgMember, error)
	RemoveMember(ctx context.Context, slug string, userID snowflake.ID) error
	Leave(ctx context.Context, slug string, userID snowflake.ID) error
}

type CreateOrganizationRequest struct {
	Name string
}

type UpdateOrganizationRequest struct {
	Name *string
}
