package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mlmadmin/internal/services"
	"mlmadmin/pkg/middleware"
)

// AuditTrail records every successful admin mutation on the route group it
// is attached to. The entity id is taken from the first of the :id, :key or
// :level path params present.
func AuditTrail(audit services.AuditServiceInterface, entityType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}
		if c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		var actor *uuid.UUID
		if id, err := uuid.Parse(c.GetString(middleware.ContextUserID)); err == nil {
			actor = &id
		}

		entityID := c.Param("id")
		if entityID == "" {
			entityID = c.Param("key")
		}
		if entityID == "" {
			entityID = c.Param("level")
		}

		audit.Record(c.Request.Context(), services.AuditEntry{
			ActorID:    actor,
			Action:     auditAction(c.Request.Method, entityType),
			EntityType: entityType,
			EntityID:   entityID,
			IP:         c.ClientIP(),
			Metadata: map[string]any{
				"route":    c.FullPath(),
				"status":   c.Writer.Status(),
				"trace_id": c.GetString("trace_id"),
			},
		})
	}
}

func auditAction(method, entityType string) string {
	verb := "update"
	switch method {
	case http.MethodPost:
		verb = "create"
	case http.MethodDelete:
		verb = "delete"
	}
	return strings.ToLower(entityType) + "." + verb
}
