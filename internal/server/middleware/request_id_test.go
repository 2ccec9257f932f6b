// file: internal/server/middleware/request_id_test.go
// version: 1.0.0
// guid: 9a3c7e50-1b24-4f6d-8c09-e5d2f7a4b136

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	ulid "github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/id", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	t.Run("generates an id", func(t *testing.T) {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/id", nil))

		id := resp.Body.String()
		_, err := ulid.ParseStrict(id)
		require.NoError(t, err)
		assert.Equal(t, id, resp.Header().Get(RequestIDHeader))
	})

	t.Run("keeps a valid client id", func(t *testing.T) {
		want := ulid.Make().String()
		req := httptest.NewRequest(http.MethodGet, "/id", nil)
		req.Header.Set(RequestIDHeader, want)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		assert.Equal(t, want, resp.Body.String())
	})

	t.Run("replaces an invalid client id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/id", nil)
		req.Header.Set(RequestIDHeader, "not-a-ulid")
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		assert.NotEqual(t, "not-a-ulid", resp.Body.String())
	})
}
