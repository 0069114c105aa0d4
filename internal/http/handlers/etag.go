package handlers

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RespondJSONWithETag writes the payload with a strong validator derived from
// its encoded bytes. When the client already holds the current revision
// (If-None-Match) the body is skipped and a 304 goes out instead. The doctors
// directory is the only caller today; its payload changes rarely, so most
// polling clients end up on the 304 path.
func RespondJSONWithETag(ctx *gin.Context, status int, payload interface{}) {
	// gin's own JSON rendering goes through encoding/json too, so hashing
	// this buffer and writing it back keeps tag and body in lockstep.
	body, err := json.Marshal(payload)
	if err != nil {
		ctx.JSON(status, payload)
		return
	}

	tag := fmt.Sprintf("%q", fmt.Sprintf("%x", sha256.Sum256(body)))
	ctx.Header("ETag", tag)

	if revisionMatches(ctx.GetHeader("If-None-Match"), tag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.Data(status, "application/json; charset=utf-8", body)
}

// revisionMatches implements the subset of RFC 9110 If-None-Match handling a
// JSON API needs: the wildcard, comma separated lists, and weak validators
// compared as if strong.
func revisionMatches(header, tag string) bool {
	header = strings.TrimSpace(header)

	switch header {
	case "":
		return false
	case "*":
		return true
	}

	want := stripWeakPrefix(tag)

	for _, candidate := range strings.Split(header, ",") {
		if stripWeakPrefix(candidate) == want {
			return true
		}
	}

	return false
}

func stripWeakPrefix(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "W/")

	return strings.TrimSpace(v)
}
