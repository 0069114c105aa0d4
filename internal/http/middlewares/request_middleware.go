package middlewares

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

// ctxRequestIDKey is where RequestID stashes the id; the respond helpers read
// the same key to echo it in error bodies.
const ctxRequestIDKey = "request_id"

// RequestID accepts a caller-supplied X-Request-Id or mints one, and reflects
// it on the response so support tickets can quote a single id end to end.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		ctx.Writer.Header().Set(requestIDHeader, id)
		ctx.Set(ctxRequestIDKey, id)

		ctx.Next()
	}
}

// RequestLogger emits one structured line per request after the handler
// chain finishes.
func RequestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		route := ctx.FullPath()
		if route == "" {
			// unmatched paths (404s) have no route template
			route = ctx.Request.URL.Path
		}

		method := ctx.Request.Method

		ctx.Next()

		reqID, _ := ctx.Get(ctxRequestIDKey)

		slog.Default().InfoContext(ctx.Request.Context(), "http_request",
			"method", method,
			"route", route,
			"status", ctx.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"request_id", reqID,
		)
	}
}
