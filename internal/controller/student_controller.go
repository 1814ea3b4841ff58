package controller

import (
	"modulegate_backend/internal/model"
	"modulegate_backend/internal/service"
	"modulegate_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StudentController struct {
	ModuleService  *service.ModuleService
	ConsentService *service.ConsentService
}

func NewStudentController(moduleService *service.ModuleService, consentService *service.ConsentService) *StudentController {
	return &StudentController{
		ModuleService:  moduleService,
		ConsentService: consentService,
	}
}

// ConsentStatusResponse tells the client whether a consent choice exists yet.
// swagger:model ConsentStatusResponse
type ConsentStatusResponse struct {
	Recorded bool                 `json:"recorded"`
	Record   *model.ConsentRecord `json:"record,omitempty"`
}

// JoinModule godoc
// @Summary Join a module by access code
// @Description Resolves a 6-character access code (case-insensitive) to an active module. Read only.
// @Tags Student
// @Produce json
// @Param access_code query string true "Access code"
// @Success 200 {object} util.Response{data=model.ModuleView}
// @Failure 400 {object} util.Response "Malformed code"
// @Failure 403 {object} util.Response "Module inactive"
// @Failure 404 {object} util.Response "Invalid access code"
// @Router /api/student/join-module [post]
func (c *StudentController) JoinModule(ctx *gin.Context) {
	module, err := c.ModuleService.ResolveAccessCode(ctx.Request.Context(), ctx.Query("access_code"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, module.View())
}

// GetModule godoc
// @Summary Get an active module
// @Description Re-reads a module by id after the student has joined it
// @Tags Student
// @Produce json
// @Param id path string true "Module ID"
// @Success 200 {object} util.Response{data=model.ModuleView}
// @Failure 403 {object} util.Response "Module inactive"
// @Failure 404 {object} util.Response "Module not found"
// @Router /api/student/modules/{id} [get]
func (c *StudentController) GetModule(ctx *gin.Context) {
	module, err := c.ModuleService.GetActive(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, module.View())
}

// GetConsent godoc
// @Summary Get a student's consent record
// @Tags Student
// @Produce json
// @Param id path string true "Module ID"
// @Param student_id query string true "Student ID"
// @Success 200 {object} util.Response{data=ConsentStatusResponse}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response "Module not found"
// @Router /api/student/modules/{id}/consent [get]
func (c *StudentController) GetConsent(ctx *gin.Context) {
	record, err := c.ConsentService.Get(ctx.Request.Context(), util.GetUserFromContext(ctx), ctx.Param("id"), ctx.Query("student_id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, ConsentStatusResponse{Recorded: record != nil, Record: record})
}
