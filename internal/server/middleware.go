package server

import (
	"strings"

	authdomain "github.com/atriumhq/atrium/internal/auth/domain"
	"github.com/gin-gonic/gin"
)

const (
	// HeaderRefresh carries the refresh token on the refresh endpoint.
	HeaderRefresh = "Refresh-Tok"

	contextUserKey = "current_user"
)

// AuthRequired resolves the bearer access token into the current user and
// stores it on the request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		tok, ok := strings.CutPrefix(raw, "Bearer ")
		if !ok || strings.TrimSpace(tok) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		user, err := s.authsvc.CurrentUser(c.Request.Context(), strings.TrimSpace(tok))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) (*authdomain.User, bool) {
	value, ok := c.Get(contextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*authdomain.User)
	return user, ok
}
