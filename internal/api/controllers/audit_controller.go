package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mlmadmin/internal/repositories"
	"mlmadmin/internal/services"
	"mlmadmin/pkg/utils"
)

type AuditController struct {
	auditService services.AuditServiceInterface
}

func NewAuditController(auditService services.AuditServiceInterface) *AuditController {
	return &AuditController{auditService: auditService}
}

// ListAuditLogs godoc
// @Summary List audit logs
// @Description Newest first. System entries (event bus) have no actor.
// @Tags Admin Audit
// @Produce json
// @Param actor_id query string false "Actor ID"
// @Param action query string false "Action, e.g. product.update or subscription.renewed"
// @Param entity_type query string false "Entity type"
// @Param entity_id query string false "Entity ID"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/audit-logs [get]
func (a *AuditController) ListAuditLogs(c *gin.Context) {
	page, pageSize, ok := pagination(c)
	if !ok {
		return
	}

	filter := repositories.AuditFilter{
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
		EntityID:   c.Query("entity_id"),
	}
	if raw := c.Query("actor_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid actor ID")
			return
		}
		filter.ActorID = &id
	}

	logs, total, err := a.auditService.List(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	respondPage(c, logs, page, pageSize, total, "Audit logs fetched successfully")
}
