package middlewares

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

// RequestID reuses a caller-supplied request id or mints one, and echoes it
// back on the response so support tickets can quote it.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(requestIDHeader)

		if id == "" {
			id = uuid.NewString()
		}

		ctx.Set(string(CtxRequestID), id)
		ctx.Writer.Header().Set(requestIDHeader, id)

		ctx.Next()
	}
}

// RequestLogger emits one structured line per completed request.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		ctx.Next()

		route := ctx.FullPath()

		if route == "" {
			// unmatched requests log their raw path
			route = ctx.Request.URL.Path
		}

		log.InfoContext(ctx.Request.Context(), "http_request",
			"method", ctx.Request.Method,
			"route", route,
			"status", ctx.Writer.Status(),
			"bytes", ctx.Writer.Size(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", ctx.ClientIP(),
			"request_id", ctx.GetString(string(CtxRequestID)),
		)
	}
}
