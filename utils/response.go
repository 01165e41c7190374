package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSONResponse is the body of every error response.
type JSONResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Respond writes an error envelope with the given status code.
func Respond(ctx *gin.Context, status int, code int, message string, fields map[string]string) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Fields:  fields,
	})
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}

// ValidationFailed returns 422 with per-field messages.
func ValidationFailed(ctx *gin.Context, fields map[string]string) {
	Respond(ctx, http.StatusUnprocessableEntity, 42200, "validation failed", fields)
}

// Success writes data as the 200 response body.
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, data)
}

// Created writes data as the 201 response body.
func Created(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusCreated, data)
}

// NoContent finishes the request with 204 and an empty body.
func NoContent(ctx *gin.Context) {
	ctx.Status(http.StatusNoContent)
}
