// file: internal/server/middleware/request_size.go
// version: 2.0.0
// guid: f2129ae7-cf11-4888-bd4f-ab4b578f8f18

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// DefaultBodyLimit applies when BodyLimits.Default is unset.
const DefaultBodyLimit int64 = 1 << 20

// RouteLimit overrides the body limit for paths ending in Suffix.
type RouteLimit struct {
	Suffix string
	Limit  int64
}

// BodyLimits caps request bodies: Default for API payloads, Routes for
// endpoints that take uploads.
type BodyLimits struct {
	Default int64
	Routes  []RouteLimit
}

// For returns the limit for a request. The second value is false for methods
// that carry no body.
func (l BodyLimits) For(method, path string) (int64, bool) {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return 0, false
	}

	limit := l.Default
	if limit < 1 {
		limit = DefaultBodyLimit
	}
	for _, r := range l.Routes {
		if strings.HasSuffix(path, r.Suffix) && r.Limit > limit {
			return r.Limit, true
		}
	}
	return limit, true
}

// LimitBody rejects declared oversize bodies with 413 and wraps the rest in
// http.MaxBytesReader, so chunked bodies fail when they are read.
func LimitBody(limits BodyLimits) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, ok := limits.For(c.Request.Method, c.Request.URL.Path)
		if !ok {
			c.Next()
			return
		}

		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":  "request body too large",
				"code":   "BODY_TOO_LARGE",
				"status": http.StatusRequestEntityTooLarge,
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
