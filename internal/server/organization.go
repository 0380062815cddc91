package server

import (
	"net/http"

	orgdomain "github.com/atriumhq/atrium/internal/organization/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

type createOrgRequest struct {
	Name string `json:"name" binding:"required"`
}

type updateOrgRequest struct {
	Name *string `json:"name"`
}

type inviteLinkRequest struct {
	Role string `json:"role" binding:"required"`
}

type joinOrgRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type memberRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (s *Server) CreateOrganization(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req createOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.guard.CheckCreateQuota(c.Request.Context(), user); err != nil {
		AbortWithError(c, err)
		return
	}

	org, err := s.orgsvc.Create(c.Request.Context(), user.ID, orgdomain.CreateOrganizationRequest{
		Name: req.Name,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Organization created", "data": org})
}

func (s *Server) ListOrganizations(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	orgs, err := s.orgsvc.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orgs})
}

func (s *Server) GetOrganization(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	orgSlug := c.Param("slug")
	if _, err := s.guard.Membership(c.Request.Context(), user, orgSlug); err != nil {
		AbortWithError(c, err)
		return
	}

	org, err := s.orgsvc.GetBySlug(c.Request.Context(), orgSlug)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": org})
}

func (s *Server) UpdateOrganization(c *gin.Context) {
	orgSlug, ok := s.requireAdmin(c)
	if !ok {
		return
	}

	var req updateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	org, err := s.orgsvc.Update(c.Request.Context(), orgSlug, orgdomain.UpdateOrganizationRequest{
		Name: req.Name,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Organization updated", "data": org})
}

func (s *Server) DeleteOrganization(c *gin.Context) {
	orgSlug, ok := s.requireAdmin(c)
	if !ok {
		return
	}

	if err := s.orgsvc.Delete(c.Request.Context(), orgSlug); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) CreateInviteLink(c *gin.Context) {
	orgSlug, ok := s.requireAdmin(c)
	if !ok {
		return
	}

	var req inviteLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	role, err := orgdomain.ParseRole(req.Role)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	link, err := s.orgsvc.CreateInviteLink(c.Request.Context(), orgSlug, role)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invite link created", "data": link})
}

func (s *Server) RevokeInviteLink(c *gin.Context) {
	orgSlug, ok := s.requireAdmin(c)
	if !ok {
		return
	}

	org, err := s.orgsvc.RevokeInviteLink(c.Request.Context(), orgSlug)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invite link revoked", "data": org})
}

func (s *Server) JoinOrganization(c *gin.Context) {
	var req joinOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	member, err := s.orgsvc.Join(c.Request.Context(), c.Param("token"), c.Param("role_token"), req.Email)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Joined organization", "data": member})
}

func (s *Server) LeaveOrganization(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	if err := s.orgsvc.Leave(c.Request.Context(), c.Param("slug"), user.ID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) ListMembers(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	orgSlug := c.Param("slug")
	if _, err := s.guard.Membership(c.Request.Context(), user, orgSlug); err != nil {
		AbortWithError(c, err)
		return
	}

	members, err := s.orgsvc.ListMembers(c.Request.Context(), orgSlug)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": members})
}

func (s *Server) GetMember(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	orgSlug := c.Param("slug")
	if _, err := s.guard.Membership(c.Request.Context(), user, orgSlug); err != nil {
		AbortWithError(c, err)
		return
	}

	memberID, ok := parseUserID(c)
	if !ok {
		return
	}

	member, err := s.orgsvc.GetMember(c.Request.Context(), orgSlug, memberID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": member})
}

func (s *Server) UpdateMemberRole(c *gin.Context) {
	orgSlug, ok := s.requireAdmin(c)
	if !ok {
		return
	}

	memberID, ok := parseUserID(c)
	if !ok {
		return
	}

	var req memberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	role, err := orgdomain.ParseRole(req.Role)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	member, err := s.orgsvc.UpdateMemberRole(c.Request.Context(), orgSlug, memberID, role)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member updated", "data": member})
}

func (s *Server) RemoveMember(c *gin.Context) {
	orgSlug, ok := s.requireAdmin(c)
	if !ok {
		return
	}

	memberID, ok := parseUserID(c)
	if !ok {
		return
	}

	if err := s.orgsvc.RemoveMember(c.Request.Context(), orgSlug, memberID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// requireAdmin runs the admin gate for the slug-addressed organization and
// reports whether the handler may proceed.
func (s *Server) requireAdmin(c *gin.Context) (string, bool) {
	user, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return "", false
	}

	orgSlug := c.Param("slug")
	if _, err := s.guard.RequireAdmin(c.Request.Context(), user, orgSlug); err != nil {
		AbortWithError(c, err)
		return "", false
	}
	return orgSlug, true
}

func parseUserID(c *gin.Context) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(c.Param("user_id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return 0, false
	}
	return id, true
}
