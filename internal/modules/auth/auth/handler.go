package auth

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tsystem/portal/internal/middleware"
	"github.com/tsystem/portal/internal/pkg/audit"
	"github.com/tsystem/portal/internal/pkg/response"
	"go.uber.org/zap"
)

const (
	msgMissingCredentials = "email and password are required"
	msgLogoutOK           = "logout successful"
)

type Handler struct {
	svc    *Service
	logger *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger.Named("AuthHandler")}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/auth")
	g.POST("/login", h.login)
	g.POST("/logout", h.logout)
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, msgMissingCredentials)
		return
	}
	dto.Email = strings.TrimSpace(dto.Email)
	if dto.Email == "" || dto.Password == "" {
		response.BadRequest(c, msgMissingCredentials)
		return
	}

	res, err := h.svc.Login(c.Request.Context(), dto.Email, dto.Password, audit.OriginFromRequest(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrRateLimited):
			response.UnauthorizedMsg(c, err.Error())
		default:
			h.logger.Error("login failed", zap.String("email", dto.Email), zap.Error(err))
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, res)
}

func (h *Handler) logout(c *gin.Context) {
	token := middleware.BearerToken(c.GetHeader("Authorization"))
	if token == "" {
		response.UnauthorizedMsg(c, middleware.MsgNoToken)
		return
	}
	if err := h.svc.Logout(c.Request.Context(), token); err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"message": msgLogoutOK})
}
