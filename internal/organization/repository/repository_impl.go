package repository

import (
	"context"
	"errors"

	"github.com/atriumhq/atrium/internal/organization/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type orgRepository struct {
	db *gorm.DB
}

type memberRepository struct {
	db *gorm.DB
}

// New builds the organization and membership repositories over one
// connection pool.
func New(db *gorm.DB) (domain.Repository, domain.MemberRepository) {
	return &orgRepository{db: db}, &memberRepository{db: db}
}

func (r *orgRepository) WithTx(tx *gorm.DB) domain.Repository {
	return &orgRepository{db: tx}
}

func (r *orgRepository) Create(ctx context.Context, org *domain.Organization) error {
	return r.db.WithContext(ctx).Create(org).Error
}

func (r *orgRepository) FindBySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	var org domain.Organization
	err := r.db.WithContext(ctx).First(&org, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrgNotFound
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *orgRepository) FindByName(ctx context.Context, name string) (*domain.Organization, error) {
	var org domain.Organization
	err := r.db.WithContext(ctx).First(&org, "LOWER(name) = LOWER(?)", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrgNotFound
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *orgRepository) Update(ctx context.Context, org *domain.Organization) error {
	return r.db.WithContext(ctx).Save(org).Error
}

func (r *orgRepository) Delete(ctx context.Context, org *domain.Organization) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("org_id = ?", org.ID).Delete(&domain.OrgMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(org).Error
	})
}

func (r *orgRepository) CountCreatedBy(ctx context.Context, userID snowflake.ID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Organization{}).
		Where("created_by = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *orgRepository) ListByUser(ctx context.Context, userID snowflake.ID) ([]domain.Organization, error) {
	var orgs []domain.Organization
	err := r.db.WithContext(ctx).
		Joins("JOIN organization_members m ON m.org_id = organizations.id").
		Where("m.user_id = ?", userID).
		Order("organizations.created_at ASC").
		Find(&orgs).Error
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *memberRepository) WithTx(tx *gorm.DB) domain.MemberRepository {
	return &memberRepository{db: tx}
}

func (r *memberRepository) Add(ctx context.Context, member *domain.OrgMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *memberRepository) Get(ctx context.Context, orgID, userID snowflake.ID) (*domain.OrgMember, error) {
	var member domain.OrgMember
	err := r.db.WithContext(ctx).First(&member, "org_id = ? AND user_id = ?", orgID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) List(ctx context.Context, orgID snowflake.ID) ([]domain.OrgMember, error) {
	var members []domain.OrgMember
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *memberRepository) Update(ctx context.Context, member *domain.OrgMember) error {
	return r.db.WithContext(ctx).Save(member).Error
}

func (r *memberRepository) Delete(ctx context.Context, member *domain.OrgMember) error {
	return r.db.WithContext(ctx).Delete(member).Error
}
