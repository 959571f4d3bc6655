package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mlmadmin/internal/models/request_models"
	"mlmadmin/internal/services"
	"mlmadmin/pkg/utils"
)

type ContentController struct {
	contentService  services.SiteContentServiceInterface
	templateService services.EmailTemplateServiceInterface
}

func NewContentController(
	contentService services.SiteContentServiceInterface,
	templateService services.EmailTemplateServiceInterface,
) *ContentController {
	return &ContentController{
		contentService:  contentService,
		templateService: templateService,
	}
}

// PublicContent godoc
// @Summary Site branding and published landing blocks
// @Tags Content
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Router /content [get]
func (cc *ContentController) PublicContent(c *gin.Context) {
	content, err := cc.contentService.PublicContent(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, content, "Content fetched successfully")
}

// GetSettings godoc
// @Summary Site settings
// @Tags Admin Content
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/content/settings [get]
func (cc *ContentController) GetSettings(c *gin.Context) {
	settings, err := cc.contentService.GetSettings(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, settings, "Settings fetched successfully")
}

// UpdateSettings godoc
// @Summary Update site settings
// @Tags Admin Content
// @Accept json
// @Produce json
// @Param request body request_models.SiteSettingsRequest true "Settings"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/content/settings [put]
func (cc *ContentController) UpdateSettings(c *gin.Context) {
	var req request_models.SiteSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	settings, err := cc.contentService.UpdateSettings(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, settings, "Settings updated successfully")
}

// ListBlocks godoc
// @Summary All landing blocks, including drafts
// @Tags Admin Content
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/content/blocks [get]
func (cc *ContentController) ListBlocks(c *gin.Context) {
	blocks, err := cc.contentService.ListBlocks(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, blocks, "Blocks fetched successfully")
}

// UpsertBlock godoc
// @Summary Create or replace a landing block
// @Tags Admin Content
// @Accept json
// @Produce json
// @Param key path string true "Block key"
// @Param request body request_models.LandingBlockRequest true "Block"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/content/blocks/{key} [put]
func (cc *ContentController) UpsertBlock(c *gin.Context) {
	var req request_models.LandingBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	block, err := cc.contentService.UpsertBlock(c.Request.Context(), c.Param("key"), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, block, "Block saved successfully")
}

// DeleteBlock godoc
// @Summary Delete a landing block
// @Tags Admin Content
// @Param key path string true "Block key"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/content/blocks/{key} [delete]
func (cc *ContentController) DeleteBlock(c *gin.Context) {
	if err := cc.contentService.DeleteBlock(c.Request.Context(), c.Param("key")); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Block deleted successfully")
}

// ReorderBlocks godoc
// @Summary Reorder landing blocks
// @Description Positions follow the order of keys
// @Tags Admin Content
// @Accept json
// @Produce json
// @Param request body request_models.ReorderBlocksRequest true "Keys in display order"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/content/block-order [put]
func (cc *ContentController) ReorderBlocks(c *gin.Context) {
	var req request_models.ReorderBlocksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	blocks, err := cc.contentService.ReorderBlocks(c.Request.Context(), req.Keys)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, blocks, "Blocks reordered successfully")
}

// ListTemplates godoc
// @Summary List email templates
// @Tags Admin Email Templates
// @Produce json
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/email-templates [get]
func (cc *ContentController) ListTemplates(c *gin.Context) {
	templates, err := cc.templateService.List(c.Request.Context())
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, templates, "Templates fetched successfully")
}

// GetTemplate godoc
// @Summary Get an email template
// @Tags Admin Email Templates
// @Produce json
// @Param key path string true "Template key"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/email-templates/{key} [get]
func (cc *ContentController) GetTemplate(c *gin.Context) {
	tpl, err := cc.templateService.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, tpl, "Template fetched successfully")
}

// UpsertTemplate godoc
// @Summary Create or replace an email template
// @Description Bodies are Go templates over the event data (Name, PlanName, Amount, PeriodEnd, Reason, ...)
// @Tags Admin Email Templates
// @Accept json
// @Produce json
// @Param key path string true "Template key, e.g. subscription.renewed"
// @Param request body request_models.EmailTemplateRequest true "Template"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/email-templates/{key} [put]
func (cc *ContentController) UpsertTemplate(c *gin.Context) {
	var req request_models.EmailTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	tpl, err := cc.templateService.Upsert(c.Request.Context(), c.Param("key"), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, tpl, "Template saved successfully")
}

// DeleteTemplate godoc
// @Summary Delete an email template
// @Tags Admin Email Templates
// @Param key path string true "Template key"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/email-templates/{key} [delete]
func (cc *ContentController) DeleteTemplate(c *gin.Context) {
	if err := cc.templateService.Delete(c.Request.Context(), c.Param("key")); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Template deleted successfully")
}

// PreviewTemplate godoc
// @Summary Render a template with sample data
// @Tags Admin Email Templates
// @Accept json
// @Produce json
// @Param key path string true "Template key"
// @Param request body request_models.TemplatePreviewRequest false "Data"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/email-templates/{key}/preview [post]
func (cc *ContentController) PreviewTemplate(c *gin.Context) {
	var req request_models.TemplatePreviewRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
			return
		}
	}

	rendered, err := cc.templateService.Preview(c.Request.Context(), c.Param("key"), req.Data)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, rendered, "Template rendered successfully")
}

// SendTestTemplate godoc
// @Summary Send a rendered template to an address
// @Tags Admin Email Templates
// @Accept json
// @Produce json
// @Param key path string true "Template key"
// @Param request body request_models.TemplateSendTestRequest true "Recipient and data"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/email-templates/{key}/test [post]
func (cc *ContentController) SendTestTemplate(c *gin.Context) {
	var req request_models.TemplateSendTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := cc.templateService.SendTest(c.Request.Context(), c.Param("key"), req.To, req.Data); err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, nil, "Test email sent")
}
