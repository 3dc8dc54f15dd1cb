package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"compliance-backend/internal/shared/server/respond"
	"compliance-backend/internal/shared/telemetry"
)

const (
	// TokenHeader carries the integer session token.
	TokenHeader = "token"

	PermissionAdmin = "admin"
	PermissionStaff = "staff"

	userIDKey   = "userId"
	orgIDKey    = "organizationId"
	identityKey = "identity"
	tokenKey    = "sessionToken"
)

// ErrInvalidToken is returned by resolvers for unknown or expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the authenticated caller attached to the gin context.
type Identity struct {
	UserID         string
	OrganizationID string
	Permission     string
	Email          string
	FirstName      string
	LastName       string
}

// IsAdmin reports whether the identity holds admin permission.
func (i Identity) IsAdmin() bool {
	return i.Permission == PermissionAdmin
}

// IdentityResolver maps a session token to the user who owns it.
type IdentityResolver interface {
	ResolveToken(ctx context.Context, token int64) (Identity, error)
}

// RequireStaff admits any caller with a resolvable session token.
func RequireStaff(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticate(c, resolver); !ok {
			return
		}
		c.Next()
	}
}

// RequireAdmin admits callers whose token resolves to an admin user.
func RequireAdmin(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := authenticate(c, resolver)
		if !ok {
			return
		}
		if !identity.IsAdmin() {
			respond.Error(c, http.StatusForbidden, "forbidden", "User does not have admin privileges", nil)
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, resolver IdentityResolver) (Identity, bool) {
	token, ok := ParseToken(c.GetHeader(TokenHeader))
	if !ok || resolver == nil {
		respond.Error(c, http.StatusForbidden, "forbidden", "Invalid token.", nil)
		return Identity{}, false
	}

	identity, err := resolver.ResolveToken(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, ErrInvalidToken) {
			telemetry.Error("auth.resolve_failed", map[string]any{
				"request_id": RequestIDFromContext(c),
				"error":      err.Error(),
			})
		}
		respond.Error(c, http.StatusForbidden, "forbidden", "Invalid token.", nil)
		return Identity{}, false
	}

	c.Set(identityKey, identity)
	c.Set(userIDKey, identity.UserID)
	c.Set(orgIDKey, identity.OrganizationID)
	c.Set(tokenKey, token)
	return identity, true
}

// ParseToken parses a positive integer session token.
func ParseToken(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	token, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || token <= 0 {
		return 0, false
	}
	return token, true
}

// IdentityFromContext fetches the identity set by the auth guards.
func IdentityFromContext(c *gin.Context) (Identity, bool) {
	if c == nil {
		return Identity{}, false
	}
	val, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	identity, ok := val.(Identity)
	return identity, ok
}

// SessionTokenFromContext fetches the token that authenticated the request.
func SessionTokenFromContext(c *gin.Context) (int64, bool) {
	if c == nil {
		return 0, false
	}
	val, ok := c.Get(tokenKey)
	if !ok {
		return 0, false
	}
	token, ok := val.(int64)
	return token, ok
}
