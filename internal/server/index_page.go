// file: internal/server/index_page.go
// version: 1.0.0
// guid: 2b3c4d5e-6f7a-8b9c-0d1e-2f3a4b5c6d7e

package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const indexHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>资质人员配置计算</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; background-color: #f5f5f5; }
        .container { max-width: 800px; margin: 0 auto; background: white; padding: 40px; border-radius: 8px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
        .api-list { background: #f8f9fa; padding: 20px; border-radius: 4px; margin: 20px 0; }
        .api-endpoint { font-family: 'Courier New', monospace; background: #e9ecef; padding: 4px 8px; margin: 2px 0; border-radius: 3px; display: block; }
        .method { color: #007bff; font-weight: bold; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Qualification Planner API Server</h1>

        <h2>Available API Endpoints:</h2>
        <div class="api-list">
            <h3>Qualifications:</h3>
            <code class="api-endpoint"><span class="method">GET</span> /api/v1/search?q= - Fuzzy search qualification names</code>
            <code class="api-endpoint"><span class="method">GET</span> /api/v1/qualifications - List qualification names</code>
            <code class="api-endpoint"><span class="method">GET</span> /api/v1/qualifications/all - List qualification rules</code>

            <h3>Staffing:</h3>
            <code class="api-endpoint"><span class="method">POST</span> /api/v1/match - Compute merged staffing for selected qualifications</code>
            <code class="api-endpoint"><span class="method">POST</span> /api/v1/verify - Check headcounts against selected qualifications</code>

            <h3>Catalog:</h3>
            <code class="api-endpoint"><span class="method">POST</span> /api/v1/catalog/reload - Reload the catalog</code>
            <code class="api-endpoint"><span class="method">POST</span> /api/v1/catalog/import - Sync the catalog from an uploaded workbook</code>
            <code class="api-endpoint"><span class="method">GET</span> /api/v1/events - Catalog change notifications (Server-Sent Events)</code>

            <h3>Health & Metrics:</h3>
            <code class="api-endpoint"><span class="method">GET</span> /api/health - Health check</code>
            <code class="api-endpoint"><span class="method">GET</span> /metrics - Prometheus metrics</code>
        </div>
    </div>
</body>
</html>
`

// setupIndexPage serves the endpoint overview and the fallback for unknown routes.
func (s *Server) setupIndexPage() {
	s.router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexHTML))
	})

	s.router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			RespondWithError(c, http.StatusNotFound, "endpoint not found", "NOT_FOUND")
			return
		}
		c.Redirect(http.StatusFound, "/")
	})
}
