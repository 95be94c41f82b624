package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mybus/internal/auth"
	"mybus/internal/domain/models"
)

const claimsKey = "authClaims"

// RequireAuth validates the bearer credential and attaches the decoded
// claims to the context. The "Bearer " prefix is optional; a bare token in
// the Authorization header is accepted too.
func RequireAuth(tokens auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		token := header
		if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			token = strings.TrimSpace(parts[1])
		}

		claims, err := tokens.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireAdmin gates a route to the ADMIN role. It must run after
// RequireAuth; a missing claim means the chain was composed wrong and is
// treated as unauthorized rather than forbidden.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		if claims.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// ClaimsFrom extracts the authenticated claims set by RequireAuth.
func ClaimsFrom(c *gin.Context) (auth.Claims, bool) {
	value, ok := c.Get(claimsKey)
	if !ok {
		return auth.Claims{}, false
	}
	claims, ok := value.(auth.Claims)
	return claims, ok
}
