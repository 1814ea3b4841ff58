package controller

import (
	"modulegate_backend/internal/model"
	"modulegate_backend/internal/service"
	"modulegate_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ModuleController serves the instructor side: creating modules and managing
// their access codes and consent forms.
type ModuleController struct {
	ModuleService *service.ModuleService
}

func NewModuleController(moduleService *service.ModuleService) *ModuleController {
	return &ModuleController{ModuleService: moduleService}
}

// swagger:model UpdateConsentFormRequest
type UpdateConsentFormRequest struct {
	ConsentRequired *bool  `json:"consent_required" binding:"required"`
	ConsentFormText string `json:"consent_form_text"`
}

// swagger:model SetActiveRequest
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// CreateModule godoc
// @Summary Create a module
// @Description Creates a module owned by the caller with a freshly generated access code
// @Tags Teacher
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateModuleInput true "Module"
// @Success 201 {object} util.Response{data=model.Module}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response "Name already used"
// @Router /api/teacher/modules [post]
func (c *ModuleController) CreateModule(ctx *gin.Context) {
	var input service.CreateModuleInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	module, err := c.ModuleService.Create(ctx.Request.Context(), util.GetUserFromContext(ctx), input)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, module)
}

// ListModules godoc
// @Summary List own modules
// @Tags Teacher
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Module}
// @Router /api/teacher/modules [get]
func (c *ModuleController) ListModules(ctx *gin.Context) {
	modules, err := c.ModuleService.ListByTeacher(ctx.Request.Context(), util.GetUserFromContext(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	if modules == nil {
		modules = []model.Module{}
	}
	util.Success(ctx, modules)
}

// GetModule godoc
// @Summary Get an owned module, including its access code
// @Tags Teacher
// @Produce json
// @Security BearerAuth
// @Param id path string true "Module ID"
// @Success 200 {object} util.Response{data=model.Module}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/teacher/modules/{id} [get]
func (c *ModuleController) GetModule(ctx *gin.Context) {
	module, err := c.ModuleService.GetOwned(ctx.Request.Context(), util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, module)
}

// RegenerateCode godoc
// @Summary Regenerate the access code
// @Description The previous code stops working immediately
// @Tags Teacher
// @Produce json
// @Security BearerAuth
// @Param id path string true "Module ID"
// @Success 200 {object} util.Response{data=model.Module}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/teacher/modules/{id}/regenerate-code [post]
func (c *ModuleController) RegenerateCode(ctx *gin.Context) {
	module, err := c.ModuleService.RegenerateCode(ctx.Request.Context(), util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, module)
}

// UpdateConsentForm godoc
// @Summary Configure the consent form
// @Tags Teacher
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Module ID"
// @Param request body UpdateConsentFormRequest true "Consent form"
// @Success 200 {object} util.Response{data=model.Module}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/teacher/modules/{id}/consent-form [put]
func (c *ModuleController) UpdateConsentForm(ctx *gin.Context) {
	var req UpdateConsentFormRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	module, err := c.ModuleService.UpdateConsentForm(ctx.Request.Context(), util.GetUserFromContext(ctx),
		ctx.Param("id"), *req.ConsentRequired, req.ConsentFormText)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, module)
}

// SetActive godoc
// @Summary Activate or deactivate a module
// @Tags Teacher
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Module ID"
// @Param request body SetActiveRequest true "Active flag"
// @Success 200 {object} util.Response{data=model.Module}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/teacher/modules/{id}/active [put]
func (c *ModuleController) SetActive(ctx *gin.Context) {
	var req SetActiveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	module, err := c.ModuleService.SetActive(ctx.Request.Context(), util.GetUserFromContext(ctx), ctx.Param("id"), *req.IsActive)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, module)
}
