package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the wire shape of every JSON response. Code mirrors the HTTP
// status so browser clients can branch on the body alone.
type Envelope struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondOK(ctx *gin.Context, data interface{}, message string) {
	if message == "" {
		message = "ok"
	}

	ctx.JSON(http.StatusOK, Envelope{
		Code:    http.StatusOK,
		Message: message,
		Data:    data,
	})
}

func RespondError(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, Envelope{
		Code:    status,
		Message: message,
	})
}

func RespondBadRequest(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusBadRequest, message)
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnauthorized, message)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, message)
}

// RespondInternal sends a generic 500: failure detail stays in the server
// logs, never in the response body.
func RespondInternal(ctx *gin.Context, message string) {
	if message == "" {
		message = "internal server error"
	}

	RespondError(ctx, http.StatusInternalServerError, message)
}
