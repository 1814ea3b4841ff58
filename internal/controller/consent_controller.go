package controller

import (
	"modulegate_backend/internal/service"
	"modulegate_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ConsentController struct {
	ConsentService *service.ConsentService
}

func NewConsentController(consentService *service.ConsentService) *ConsentController {
	return &ConsentController{ConsentService: consentService}
}

// SubmitConsentRequest carries 1 (agree), 2 (do not agree) or 3 (not eligible).
// swagger:model SubmitConsentRequest
type SubmitConsentRequest struct {
	WaiverStatus *int `json:"waiver_status" binding:"required"`
}

// SubmitConsent godoc
// @Summary Record a consent choice
// @Description Creates or overwrites the student's consent record for the module
// @Tags Consent
// @Accept json
// @Produce json
// @Param id path string true "Module ID"
// @Param student_id path string true "Student ID"
// @Param request body SubmitConsentRequest true "Consent choice"
// @Success 200 {object} util.Response{data=model.ConsentRecord}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response "Module not found"
// @Router /api/modules/{id}/consent/{student_id} [put]
func (c *ConsentController) SubmitConsent(ctx *gin.Context) {
	var req SubmitConsentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, util.ErrInvalidWaiverStatus.Error())
		return
	}

	record, err := c.ConsentService.Submit(
		ctx.Request.Context(),
		util.GetUserFromContext(ctx),
		ctx.Param("id"),
		ctx.Param("student_id"),
		*req.WaiverStatus,
	)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, record)
}
