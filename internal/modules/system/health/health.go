package health

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tsystem/portal/internal/database"
	"github.com/tsystem/portal/internal/middleware"
	"github.com/tsystem/portal/internal/models"
	"github.com/tsystem/portal/internal/pkg/audit"
	"github.com/tsystem/portal/internal/pkg/cron"
	pkgredis "github.com/tsystem/portal/internal/pkg/redis"
	"github.com/tsystem/portal/internal/pkg/response"
	"gorm.io/gorm"
)

const pingTimeout = 2 * time.Second

type Deps struct {
	DB          *gorm.DB
	Redis       *pkgredis.Client
	Audit       *audit.Recorder
	Sched       *cron.Scheduler
	Environment string
}

// RegisterRoutes mounts the public health probe and the admin job endpoints.
func RegisterRoutes(rg *gin.RouterGroup, d Deps, authMW gin.HandlerFunc) {
	rg.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()

		// Liveness only: a failed dependency is reported, never turned into a 5xx.
		dbOK := database.Ping(ctx, d.DB)
		status := "ok"
		if !dbOK {
			status = "degraded"
		}

		body := gin.H{
			"status":      status,
			"timestamp":   time.Now().UTC().Format(time.RFC3339Nano),
			"environment": d.Environment,
			"database":    dbOK,
		}
		if d.Audit != nil {
			body["audit_failures"] = d.Audit.Failures()
		}
		if d.Redis != nil {
			body["redis"] = d.Redis.Ping(ctx)
		}
		c.JSON(http.StatusOK, body)
	})

	if d.Sched == nil {
		return
	}
	jobs := rg.Group("/health/cron", authMW, middleware.RequireRoles(models.RoleAdmin))
	jobs.GET("", func(c *gin.Context) {
		response.OK(c, d.Sched.List())
	})
	jobs.POST("/run/:name", func(c *gin.Context) {
		if err := d.Sched.Trigger(c.Param("name")); err != nil {
			if errors.Is(err, cron.ErrJobNotFound) {
				response.NotFoundMsg(c, err.Error())
				return
			}
			response.InternalError(c, err)
			return
		}
		response.OK(c, gin.H{"message": "job triggered"})
	})
}
