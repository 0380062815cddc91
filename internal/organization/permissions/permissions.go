// Package permissions holds the authorization gates applied before
// organization operations. Gates only read; they never mutate state.
package permissions

import (
	"context"

	authdomain "github.com/atriumhq/atrium/internal/auth/domain"
	"github.com/atriumhq/atrium/internal/organization/domain"
)

// FreeOrgLimit caps how many organizations a non-premium user may create.
const FreeOrgLimit = 2

// Guard evaluates membership, role, and quota preconditions.
type Guard struct {
	orgs    domain.Repository
	members domain.MemberRepository
}

func NewGuard(orgs domain.Repository, members domain.MemberRepository) *Guard {
	return &Guard{orgs: orgs, members: members}
}

// Membership resolves the caller's membership in the organization behind
// slug. Missing org or missing membership both gate the request.
func (g *Guard) Membership(ctx context.Context, user *authdomain.User, orgSlug string) (*domain.OrgMember, error) {
	org, err := g.orgs.FindBySlug(ctx, orgSlug)
	if err != nil {
		return nil, err
	}
	member, err := g.members.Get(ctx, org.ID, user.ID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, domain.ErrNotMember
	}
	return member, nil
}

// RequireAdmin runs the membership gate and then checks the admin role.
func (g *Guard) RequireAdmin(ctx context.Context, user *authdomain.User, orgSlug string) (*domain.OrgMember, error) {
	member, err := g.Membership(ctx, user, orgSlug)
	if err != nil {
		return nil, err
	}
	if member.Role != domain.RoleAdmin {
		return nil, domain.ErrNotAdmin
	}
	return member, nil
}

// CheckCreateQuota enforces the freemium cap on created organizations.
// Premium users are exempt.
func (g *Guard) CheckCreateQuota(ctx context.Context, user *authdomain.User) error {
	if user.IsPremium {
		return nil
	}
	count, err := g.orgs.CountCreatedBy(ctx, user.ID)
	if err != nil {
		return err
	}
	if count >= FreeOrgLimit {
		return domain.ErrQuotaExceeded
	}
	return nil
}
