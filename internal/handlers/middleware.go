package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	identityUserKey = "userID"
	identityRoleKey = "userRole"
)

// RequireIdentity extracts the (userId, role) pair resolved by the
// external authentication collaborator. Requests without an identity
// are rejected before reaching any session operation.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
			return
		}

		role := c.GetHeader("X-User-Role")
		if role == "" {
			role = "user"
		}

		c.Set(identityUserKey, userID)
		c.Set(identityRoleKey, role)
		c.Next()
	}
}

func requesterID(c *gin.Context) string {
	return c.GetString(identityUserKey)
}
