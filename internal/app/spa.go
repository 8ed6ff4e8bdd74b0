package app

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tsystem/portal/internal/pkg/response"
)

// spaFallback serves files from dir and falls back to dir/index.html for client-side
// routes. Unmatched /api paths and non-GET methods always get the JSON 404.
func spaFallback(dir string) gin.HandlerFunc {
	index := filepath.Join(dir, "index.html")
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if p == "/api" || strings.HasPrefix(p, "/api/") {
			response.NotFound(c)
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			response.NotFound(c)
			return
		}
		if dir == "" {
			response.NotFound(c)
			return
		}

		target := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+p)))
		if info, err := os.Stat(target); err == nil && !info.IsDir() {
			c.File(target)
			return
		}
		if _, err := os.Stat(index); err != nil {
			response.NotFound(c)
			return
		}
		c.File(index)
	}
}
