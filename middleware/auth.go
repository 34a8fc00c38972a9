package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pawphysio/auth"
	"pawphysio/models"
)

// Context keys set by RequireAuth.
const (
	CtxUserID    = "userID"
	CtxUserEmail = "userEmail"
	CtxUserRole  = "userRole"
)

// RequireAuth verifies the Authorization header and stores the caller
// identity on the request context.
func RequireAuth(a *auth.Auth) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := strings.TrimSpace(c.GetHeader("Authorization"))

		claims, err := a.VerifyToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": err.Error()})
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUserEmail, claims.Email)
		c.Set(CtxUserRole, claims.Role)
		c.Next()
	}
}

// RequireRole gates a route to the listed roles. A superadmin passes any
// admin gate.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		role := c.GetString(CtxUserRole)
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "unauthorized"})
			return
		}
		if !allowed[role] && !(role == models.RoleSuperAdmin && allowed[models.RoleAdmin]) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "insufficient role"})
			return
		}
		c.Next()
	}
}

// CurrentUser reads the identity RequireAuth stored on the context.
func CurrentUser(c *gin.Context) (id uint, email, role string) {
	if v, ok := c.Get(CtxUserID); ok {
		if u, ok := v.(uint); ok {
			id = u
		}
	}
	return id, c.GetString(CtxUserEmail), c.GetString(CtxUserRole)
}
