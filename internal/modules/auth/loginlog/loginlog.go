package loginlog

import (
	"github.com/gin-gonic/gin"
	"github.com/tsystem/portal/internal/middleware"
	"github.com/tsystem/portal/internal/models"
	"github.com/tsystem/portal/internal/pkg/pagination"
	"github.com/tsystem/portal/internal/pkg/response"
	"gorm.io/gorm"
)

// RegisterRoutes mounts the admin-only audit trail listing, newest first.
func RegisterRoutes(rg *gin.RouterGroup, db *gorm.DB, authMW gin.HandlerFunc) {
	rg.GET("/admin/login-logs", authMW, middleware.RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		tx := db.Model(&models.LoginLog{})
		if email := c.Query("email"); email != "" {
			tx = tx.Where("email = ?", email)
		}
		if companyID := c.Query("companyId"); companyID != "" {
			tx = tx.Where("company_id = ?", companyID)
		}
		switch status := models.LoginStatus(c.Query("status")); status {
		case "":
		case models.LoginSuccess, models.LoginFailed:
			tx = tx.Where("status = ?", status)
		default:
			response.BadRequest(c, "status must be success or failed")
			return
		}

		page, err := pagination.Find[models.LoginLog](c.Request.Context(), tx, pagination.FromContext(c), newestFirst)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		response.OK(c, page)
	})
}

func newestFirst(db *gorm.DB) *gorm.DB { return db.Order("timestamp DESC, id DESC") }
