package server

import (
	"errors"
	"net/http"

	authdomain "github.com/atriumhq/atrium/internal/auth/domain"
	orgdomain "github.com/atriumhq/atrium/internal/organization/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid_request")
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// ErrorHandlingMiddleware converts domain sentinel errors recorded on the
// context into the terminal JSON response. Nothing is retried.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case isUnauthorizedError(err):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: err.Error(),
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isBadRequestError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "bad_request",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isUnauthorizedError(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, authdomain.ErrInvalidCredentials) ||
		errors.Is(err, authdomain.ErrNotVerified) ||
		errors.Is(err, authdomain.ErrInvalidRefresh)
}

func isConflictError(err error) bool {
	return errors.Is(err, authdomain.ErrUserExists) ||
		errors.Is(err, authdomain.ErrTokenExpired) ||
		errors.Is(err, orgdomain.ErrOrgExists) ||
		errors.Is(err, orgdomain.ErrAlreadyMember) ||
		errors.Is(err, orgdomain.ErrNotAdmin) ||
		errors.Is(err, orgdomain.ErrInviteToken)
}

func isBadRequestError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, authdomain.ErrPasswordMismatch) ||
		errors.Is(err, orgdomain.ErrQuotaExceeded) ||
		errors.Is(err, orgdomain.ErrLinkRevoked) ||
		errors.Is(err, orgdomain.ErrInvalidRole)
}

func isNotFoundError(err error) bool {
	return errors.Is(err, authdomain.ErrUserNotFound) ||
		errors.Is(err, orgdomain.ErrOrgNotFound) ||
		errors.Is(err, orgdomain.ErrNotMember) ||
		errors.Is(err, gorm.ErrRecordNotFound)
}
