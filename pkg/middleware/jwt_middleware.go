package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	mem "gladiadores/pkg/memcache"
	"gladiadores/pkg/utils"
)

const (
	CtxUserID = "user_id"
	CtxRoles  = "roles"
	CtxClaims = "claims"
)

// RoleChecker answers has_role against the user_roles table so revoked roles take effect
// before the token expires.
type RoleChecker interface {
	HasRole(ctx context.Context, accountID uuid.UUID, role string) (bool, error)
}

func JWTAuthMiddleware(issuer *utils.TokenIssuer, denylist mem.TokenStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			utils.RespondError(c, http.StatusUnauthorized, "Authorization header missing or invalid")
			c.Abort()
			return
		}

		claims, err := issuer.ValidateToken(tokenString)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		if denylist != nil {
			_, revoked, err := denylist.Peek(c.Request.Context(), claims.ID)
			if err != nil {
				zap.L().Warn("denylist lookup failed", zap.Error(err))
			}
			if revoked {
				utils.RespondError(c, http.StatusUnauthorized, "Session closed")
				c.Abort()
				return
			}
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRoles, claims.Roles)
		c.Set(CtxClaims, claims)
		c.Next()
	}
}

// bearerToken reads the Authorization header. EventSource cannot set headers, so
// event-stream requests may pass the token as ?access_token instead.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer "), true
	}
	if authHeader == "" && strings.Contains(c.GetHeader("Accept"), "text/event-stream") {
		if t := c.Query("access_token"); t != "" {
			return t, true
		}
	}
	return "", false
}

func RoleMiddleware(checker RoleChecker, requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := CurrentUserID(c)
		if !ok {
			utils.RespondError(c, http.StatusUnauthorized, "Authorization required")
			c.Abort()
			return
		}

		allowed, err := checker.HasRole(c.Request.Context(), userID, requiredRole)
		if err != nil {
			utils.HandleServiceError(c, err)
			c.Abort()
			return
		}
		if !allowed {
			utils.RespondError(c, http.StatusForbidden, "Forbidden: insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}

func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString(CtxUserID))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func CurrentClaims(c *gin.Context) *utils.Claims {
	v, ok := c.Get(CtxClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*utils.Claims)
	return claims
}
