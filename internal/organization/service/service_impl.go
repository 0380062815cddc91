package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	authdomain "github.com/atriumhq/atrium/internal/auth/domain"
	"github.com/atriumhq/atrium/internal/config"
	"github.com/atriumhq/atrium/internal/organization/domain"
	"github.com/atriumhq/atrium/internal/token"
	"github.com/atriumhq/atrium/pkg/db"
	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	log      *zap.Logger
	db       *gorm.DB
	orgs     domain.Repository
	members  domain.MemberRepository
	users    authdomain.Repository
	signer   *token.Signer
	genID    *snowflake.Node
	frontend string
}

// NewSigner builds the untimed codec for invite-link tokens.
func NewSigner(cfg config.Config) *token.Signer {
	return token.NewSigner(cfg.Auth.LinkSecret())
}

func New(log *zap.Logger, db *gorm.DB, orgs domain.Repository, members domain.MemberRepository, users authdomain.Repository, signer *token.Signer, genID *snowflake.Node, cfg config.Config) domain.Service {
	return &service{
		log:      log.Named("organization.service"),
		db:       db,
		orgs:     orgs,
		members:  members,
		users:    users,
		signer:   signer,
		genID:    genID,
		frontend: cfg.FrontendURL,
	}
}

func (s *service) Create(ctx context.Context, userID snowflake.ID, req domain.CreateOrganizationRequest) (*domain.Organization, error) {
	name := strings.TrimSpace(req.Name)

	if _, err := s.orgs.FindByName(ctx, name); err == nil {
		return nil, domain.ErrOrgExists
	} else if !errors.Is(err, domain.ErrOrgNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	orgID := s.genID.Generate()
	createdBy := userID
	org := &domain.Organization{
		ID:        orgID,
		Name:      name,
		Slug:      fmt.Sprintf("%s-%s", slug.Make(name), orgID.Base36()),
		CreatedBy: &createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// The creator becomes the first admin in the same transaction.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orgs.WithTx(tx).Create(ctx, org); err != nil {
			return err
		}
		member := &domain.OrgMember{
			ID:        s.genID.Generate(),
			OrgID:     orgID,
			UserID:    userID,
			Role:      domain.RoleAdmin,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return s.members.WithTx(tx).Add(ctx, member)
	})
	if err != nil {
		return nil, err
	}

	return org, nil
}

func (s *service) GetBySlug(ctx context.Context, orgSlug string) (*domain.Organization, error) {
	return s.orgs.FindBySlug(ctx, orgSlug)
}

func (s *service) ListByUser(ctx context.Context, userID snowflake.ID) ([]domain.Organization, error) {
	return s.orgs.ListByUser(ctx, userID)
}

func (s *service) Update(ctx context.Context, orgSlug string, req domain.UpdateOrganizationRequest) (*domain.Organization, error) {
	org, err := s.orgs.FindBySlug(ctx, orgSlug)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		org.Name = strings.TrimSpace(*req.Name)
	}
	org.UpdatedAt = time.Now().UTC()
	if err := s.orgs.Update(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *service) Delete(ctx context.Context, orgSlug string) error {
	org, err := s.orgs.FindBySlug(ctx, orgSlug)
	if err != nil {
		return err
	}
	return s.orgs.Delete(ctx, org)
}

func (s *service) CreateInviteLink(ctx context.Context, orgSlug string, role domain.Role) (string, error) {
	org, err := s.orgs.FindBySlug(ctx, orgSlug)
	if err != nil {
		return "", err
	}

	slugTok := s.signer.Sign(org.Slug)
	roleTok := s.signer.Sign(string(role))

	// Minting a new link re-enables joining if it was revoked.
	if org.RevokeLink {
		org.RevokeLink = false
		org.UpdatedAt = time.Now().UTC()
		if err := s.orgs.Update(ctx, org); err != nil {
			return "", err
		}
	}

	name := strings.Join(strings.Fields(org.Name), "-")
	return fmt.Sprintf("%s%s/invite/%s/%s/mixer=invite/", s.frontend, name, slugTok, roleTok), nil
}

func (s *service) RevokeInviteLink(ctx context.Context, orgSlug string) (*domain.Organization, error) {
	org, err := s.orgs.FindBySlug(ctx, orgSlug)
	if err != nil {
		return nil, err
	}
	org.RevokeLink = true
	org.UpdatedAt = time.Now().UTC()
	if err := s.orgs.Update(ctx, org); err != nil {
		return nil, err
	}
	return org, nil
}

func (s *service) Join(ctx context.Context, slugToken, roleToken, email string) (*domain.OrgMember, error) {
	orgSlug, err := s.signer.Verify(slugToken)
	if err != nil {
		return nil, domain.ErrInviteToken
	}

	// A bad role token falls back to member rather than failing the join.
	role := domain.RoleMember
	if raw, err := s.signer.Verify(roleToken); err == nil {
		if parsed, err := domain.ParseRole(raw); err == nil {
			role = parsed
		}
	}

	org, err := s.orgs.FindBySlug(ctx, orgSlug)
	if err != nil {
		return nil, err
	}
	if org.RevokeLink {
		return nil, domain.ErrLinkRevoked
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	existing, err := s.members.Get(ctx, org.ID, user.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrAlreadyMember
	}

	now := time.Now().UTC()
	member := &domain.OrgMember{
		ID:        s.genID.Generate(),
		OrgID:     org.ID,
		UserID:    user.ID,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.members.Add(ctx, member); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrAlreadyMember
		}
		return nil, err
	}

	s.log.Info("member joined via invite link",
		zap.String("org_slug", org.Slug),
		zap.String("role", string(role)),
	)
	member.Org = org
	return member, nil
}

func (s *service) GetMember(ctx context.Context, orgSlug string, userID snowflake.ID) (*domain.OrgMember, error) {
	org, err := s.orgs.FindBySlug(ctx, orgSlug)
	if err != nil {
		return nil, err
	}
	member, err := s.members.Get(ctx, org.ID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, domain.ErrNotMember
	}
	member.Org = org
	return member, nil
}

func (s *service) ListMembers(ctx context.Context, orgSlug string) ([]domain.OrgMember, error) {
	org, err := s.orgs.FindBySlug(ctx, orgSlug)
	if err != nil {
		return nil, err
	}
	return s.members.List(ctx, org.ID)
}

func (s *service) UpdateMemberRole(ctx context.Context, orgSlug string, userID snowflake.ID, role domain.Role) (*domain.OrgMember, error) {
	member, err := s.GetMember(ctx, orgSlug, userID)
	if err != nil {
		return nil, err
	}
	member.Role = role
	member.UpdatedAt = time.Now().UTC()
	if err := s.members.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *service) RemoveMember(ctx context.Context, orgSlug string, userID snowflake.ID) error {
	member, err := s.GetMember(ctx, orgSlug, userID)
	if err != nil {
		return err
	}
	return s.members.Delete(ctx, member)
}

func (s *service) Leave(ctx context.Context, orgSlug string, userID snowflake.ID) error {
	return s.RemoveMember(ctx, orgSlug, userID)
}
