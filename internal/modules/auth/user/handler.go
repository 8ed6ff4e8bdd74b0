package user

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/tsystem/portal/internal/middleware"
	"github.com/tsystem/portal/internal/models"
	"github.com/tsystem/portal/internal/pkg/pagination"
	"github.com/tsystem/portal/internal/pkg/response"
	"go.uber.org/zap"
)

type Handler struct {
	svc    *Service
	logger *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger.Named("UserHandler")}
}

// RegisterRoutes mounts the profile and admin user routes. authMW must validate the
// session; the admin group is additionally gated on the admin role.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.PATCH("/profile/password", authMW, h.changePassword)

	admin := rg.Group("/admin/users", authMW, middleware.RequireRoles(models.RoleAdmin))
	admin.GET("", h.list)
	admin.POST("", h.create)
	admin.PATCH("/:id", h.updateAccess)
}

func (h *Handler) changePassword(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	var dto ChangePasswordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), userID, dto.OldPassword, dto.NewPassword); err != nil {
		switch {
		case errors.Is(err, errWrongPassword):
			response.BadRequest(c, "current password is incorrect")
		case errors.Is(err, errPasswordSameAsOld):
			response.UnprocessableEntity(c, "new password must differ from the current one")
		case errors.Is(err, errUserNotFound):
			response.Unauthorized(c)
		default:
			h.logger.Error("change password failed", zap.String("user_id", userID), zap.Error(err))
			response.InternalError(c, err)
		}
		return
	}
	response.NoContent(c)
}

func (h *Handler) list(c *gin.Context) {
	var role models.Role
	if raw := c.Query("role"); raw != "" {
		r, err := models.ParseRole(raw)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		role = r
	}
	page, err := h.svc.List(c.Request.Context(), pagination.FromContext(c), c.Query("companyId"), role)
	if err != nil {
		h.logger.Error("list users failed", zap.Error(err))
		response.InternalError(c, err)
		return
	}
	data := make([]userResponse, 0, len(page.Data))
	for i := range page.Data {
		data = append(data, toResponse(&page.Data[i]))
	}
	response.OK(c, pagination.Page[userResponse]{Data: data, Pagination: page.Pagination})
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.Create(c.Request.Context(), &dto)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidRole), errors.Is(err, errCompanyNotFound):
			response.BadRequest(c, err.Error())
		case errors.Is(err, errEmailTaken):
			response.Conflict(c, err.Error())
		default:
			h.logger.Error("create user failed", zap.String("email", dto.Email), zap.Error(err))
			response.InternalError(c, err)
		}
		return
	}
	response.Created(c, toResponse(u))
}

func (h *Handler) updateAccess(c *gin.Context) {
	var dto UpdateAccessDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.svc.UpdateAccess(c.Request.Context(), c.Param("id"), &dto)
	if err != nil {
		switch {
		case errors.Is(err, errUserNotFound):
			response.NotFoundMsg(c, err.Error())
		case errors.Is(err, models.ErrInvalidRole), errors.Is(err, errCompanyNotFound), errors.Is(err, errNothingToUpdate):
			response.BadRequest(c, err.Error())
		default:
			h.logger.Error("update user access failed", zap.String("user_id", c.Param("id")), zap.Error(err))
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, toResponse(u))
}
