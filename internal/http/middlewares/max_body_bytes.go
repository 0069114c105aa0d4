package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBodyBytes caps request bodies at max bytes. Reads past the cap fail with
// a *http.MaxBytesError, which gin surfaces as a 400 during binding; the
// image upload handler maps it to 413 itself. The limit is sized to admit a
// profile image plus headroom for the largest JSON payloads.
func MaxBodyBytes(max int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, max)
		ctx.Next()
	}
}
