package domain

import "errors"

var (
	ErrOrgExists     = errors.New("org_exists")
	ErrOrgNotFound   = errors.New("org_not_found")
	ErrNotMember     = errors.New("not_a_member")
	ErrAlreadyMember = errors.New("already_a_member")
	ErrNotAdmin      = errors.New("not_an_admin")
	ErrQuotaExceeded = errors.New("org_quota_exceeded")
	ErrLinkRevoked   = errors.New("invite_link_revoked")
	ErrInviteToken   = errors.New("invalid_invite_token")
	ErrInvalidRole   = errors.New("invalid_role")
)
