package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// Uploaded files are user-supplied; the CSP stops them executing anything if
// a browser opens one directly.
const uploadsCSP = "default-src 'none'; img-src 'self'"

func SecurityHeaders() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		h := ctx.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if strings.HasPrefix(ctx.Request.URL.Path, "/uploads/") {
			h.Set("Content-Security-Policy", uploadsCSP)
		}

		ctx.Next()
	}
}
