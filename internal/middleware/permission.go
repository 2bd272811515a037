package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/edu-dashboard-api/pkg/errors"
	"github.com/noah-isme/edu-dashboard-api/pkg/response"
)

type permissionChecker interface {
	CanAccessPage(ctx context.Context, role, pageName string) (bool, error)
	CanPerformAction(ctx context.Context, role, pageName, action string) (bool, error)
}

// RequirePageAccess guards a route behind the page-level resolver.
// Store failures surface as 500, never as a silent allow.
func RequirePageAccess(perms permissionChecker, pageName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := mustClaims(c)
		if claims == nil {
			return
		}

		allowed, err := perms.CanAccessPage(c.Request.Context(), claims.Role, pageName)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if !allowed {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAction guards a route behind the action-level resolver.
func RequireAction(perms permissionChecker, pageName, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := mustClaims(c)
		if claims == nil {
			return
		}

		allowed, err := perms.CanPerformAction(c.Request.Context(), claims.Role, pageName, action)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if !allowed {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole allows only the listed roles, matched case-insensitively.
// Used for the admin-only provisioning surface.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[models.CanonicalRole(r)] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := mustClaims(c)
		if claims == nil {
			return
		}
		if _, ok := allowed[models.CanonicalRole(claims.Role)]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

func mustClaims(c *gin.Context) *models.JWTClaims {
	claimsValue, exists := c.Get(ContextUserKey)
	if !exists {
		response.Error(c, appErrors.ErrUnauthorized)
		c.Abort()
		return nil
	}
	claims, ok := claimsValue.(*models.JWTClaims)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		c.Abort()
		return nil
	}
	return claims
}
