package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/blogapi/services"
	"github.com/cppla/blogapi/utils"
)

// respondError maps service errors onto HTTP responses. Errors outside the known taxonomy
// are logged and reported as a generic 500 with the given code and message.
func respondError(ctx *gin.Context, err error, code int, message string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.ValidationFailed(ctx, verr.Fields)
	case errors.Is(err, services.ErrUnauthenticated):
		ctx.Header("WWW-Authenticate", "Bearer")
		utils.Error(ctx, http.StatusUnauthorized, 40110, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.Error(ctx, http.StatusUnauthorized, 40111, err.Error())
	case errors.Is(err, services.ErrForbidden):
		utils.Error(ctx, http.StatusForbidden, 40301, err.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40401, err.Error())
	case errors.Is(err, services.ErrConflict):
		utils.Error(ctx, http.StatusConflict, 40901, err.Error())
	default:
		utils.Logger.Error(message,
			zap.Error(err),
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.Request.URL.Path),
			zap.String(utils.ContextRequestIDKey, utils.RequestID(ctx)))
		_ = ctx.Error(err)
		utils.Error(ctx, http.StatusInternalServerError, code, message)
	}
}
