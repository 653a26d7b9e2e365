package jwtmw

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"internship_backend/internal/shared/role"
)

// AuthRequired verifies the bearer token and attaches the persisted identity
// of its subject to the context. The chain is aborted with 401 otherwise.
func AuthRequired(p TokenParser, resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := p.ParseToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		identity, err := resolver.ResolveIdentity(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, ErrIdentityNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				return
			}
			slog.Error("failed to resolve identity", "error", err, "user_id", claims.UserID)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.Set(ContextIdentity, identity)
		c.Next()
	}
}

// RequireRole aborts with 403 unless the caller's role is one of roles.
// It must run after AuthRequired.
func RequireRole(roles ...role.Role) gin.HandlerFunc {
	allowed := role.NewSet(roles...)
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok || !allowed.Contains(identity.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
