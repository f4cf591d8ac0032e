package middleware

import (
	"context"  // Context for the role lookup
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"wallet_booking/internal/domain" // Role names
	"wallet_booking/internal/store"  // Not-found sentinel

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// RoleLookup reads a user's current role
type RoleLookup interface {
	UserRole(ctx context.Context, id uint) (string, error)
}

// AdminOnlyMiddleware checks the user's role from the database on each request,
// so a demoted admin loses access before their token expires
func AdminOnlyMiddleware(roles RoleLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c)
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		role, err := roles.UserRole(c.Request.Context(), userID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			logrus.WithFields(logrus.Fields{"user_id": userID, "error": err.Error()}).Error("Role lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		// Unknown users and non-admins are both refused
		if role != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}
