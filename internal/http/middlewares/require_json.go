package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireJSON rejects JSON endpoints being fed other content types. A bare
// mime check only; charset parameters are tolerated.
func RequireJSON() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		contentType := ctx.GetHeader("Content-Type")

		if mime, _, _ := strings.Cut(contentType, ";"); strings.TrimSpace(mime) != "application/json" {
			ctx.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
				"code":    http.StatusUnsupportedMediaType,
				"message": "request body must be application/json",
			})
			return
		}

		ctx.Next()
	}
}
