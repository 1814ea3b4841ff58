package controller

import (
	"errors"
	"net/http"

	"modulegate_backend/internal/model"
	"modulegate_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto the status codes clients branch on.
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrMalformedAccessCode):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrInvalidAccessCode):
		util.NotFound(ctx, "Invalid access code")
	case errors.Is(err, util.ErrModuleNotFound):
		util.NotFound(ctx, "Module not found")
	case errors.Is(err, util.ErrModuleInactive):
		util.Forbidden(ctx, "This module is not currently active")
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx, "")
	case errors.Is(err, util.ErrInvalidWaiverStatus), errors.Is(err, util.ErrMissingStudentID):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrModuleNameTaken):
		util.Error(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, util.ErrAccessCodeExhausted):
		util.Error(ctx, http.StatusServiceUnavailable, "Could not allocate an access code, please retry")
	default:
		util.LogInternalError(ctx, err)
	}
}
