package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-dashboard-api/internal/models"
)

type auditRecorder interface {
	Create(ctx context.Context, entry *models.AuditEntry) error
}

// Audit records an audit entry after successful requests on the given
// surface. Best-effort: a failed write never fails the request.
func Audit(recorder auditRecorder, actionType, entityType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		entry := &models.AuditEntry{
			ActionType:  actionType,
			EntityType:  entityType,
			Description: c.Request.Method + " " + c.FullPath(),
		}

		if claimsValue, ok := c.Get(ContextUserKey); ok {
			if claims, ok := claimsValue.(*models.JWTClaims); ok {
				entry.ChangedByUserID = claims.UserID
				entry.ChangedByRole = claims.Role
			}
		}

		detail, _ := json.Marshal(map[string]interface{}{
			"path":    c.FullPath(),
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Milliseconds(),
		})
		entry.NewValue = detail
		entry.Metadata = models.AuditMetadata{Extra: map[string]interface{}{"ip": c.ClientIP()}}

		_ = recorder.Create(c.Request.Context(), entry)
	}
}
