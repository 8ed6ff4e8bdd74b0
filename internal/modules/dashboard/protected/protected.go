package protected

import (
	"github.com/gin-gonic/gin"
	"github.com/tsystem/portal/internal/middleware"
	"github.com/tsystem/portal/internal/models"
	"github.com/tsystem/portal/internal/pkg/response"
)

// ManagementRoles may open the management area.
var ManagementRoles = []models.Role{models.RoleAdmin, models.RoleDirector, models.RoleManager}

// RegisterRoutes mounts the session-only and role-gated areas. authMW must be the
// session validator.
func RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/profile", authMW, reply("user profile"))
	rg.GET("/admin-dashboard", authMW, middleware.RequireRoles(models.RoleAdmin), reply("admin dashboard"))
	rg.GET("/management", authMW, middleware.RequireRoles(ManagementRoles...), reply("management area"))
}

func reply(message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		response.OK(c, gin.H{
			"message": message,
			"user":    middleware.CurrentClaims(c),
		})
	}
}
