// Package domain contains core types for the organization service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role is the closed set of membership roles.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// ParseRole maps a raw string onto the closed role set.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleMember:
		return RoleMember, nil
	default:
		return "", ErrInvalidRole
	}
}

// Organization represents a tenant workspace.
type Organization struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	Name      string        `gorm:"type:text;not null" json:"name"`
	Slug      string        `gorm:"type:text;not null;uniqueIndex" json:"slug"`
	CreatedBy *snowflake.ID `gorm:"column:created_by" json:"created_by,omitempty"`
	// RevokeLink gates invite acceptance. Distributed links stay
	// cryptographically valid; this flag rejects them at consumption time.
	RevokeLink bool      `gorm:"column:revoke_link;not null;default:false" json:"revoke_link"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Organization) TableName() string { return "organizations" }

// OrgMember represents membership of a user in an organization. A user joins
// an organization at most once.
type OrgMember struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"column:org_id;not null;index;uniqueIndex:ux_org_member,priority:1" json:"org_id"`
	UserID    snowflake.ID `gorm:"column:user_id;not null;index;uniqueIndex:ux_org_member,priority:2" json:"user_id"`
	Role      Role         `gorm:"type:text;not null" json:"role"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Org *Organization `gorm:"foreignKey:OrgID;constraint:OnDelete:CASCADE" json:"org,omitempty"`
}

// TableName sets the database table name.
func (OrgMember) TableName() string { return "organization_members" }
