package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hospital-server/internal/service"
	"hospital-server/shared/interfaces"
)

// SessionHeader is accepted in place of the session cookie.
const SessionHeader = "X-Session-ID"

type GeneralConfigHandler struct {
	configService service.GeneralConfigService
	sessionRepo   interfaces.SessionRepository
	sessionCookie string
	logger        *zap.Logger
}

func NewGeneralConfigHandler(
	configService service.GeneralConfigService,
	sessionRepo interfaces.SessionRepository,
	sessionCookie string,
	logger *zap.Logger,
) *GeneralConfigHandler {
	return &GeneralConfigHandler{
		configService: configService,
		sessionRepo:   sessionRepo,
		sessionCookie: sessionCookie,
		logger:        logger.Named("GeneralConfigHandler"),
	}
}

func (h *GeneralConfigHandler) RegisterRoutes(router gin.IRouter) {
	general := router.Group("/api/general")
	{
		general.GET("", h.getGeneral)
		general.GET("/title", h.getTitle)
		general.GET("/color", h.getColor)
		general.GET("/theme", h.getTheme)
		general.GET("/logo", h.getLogo)
	}

	// Изменения - только для администратора.
	admin := general.Group("")
	admin.Use(h.SessionMiddleware(), h.RequireAdmin())
	{
		admin.PUT("/title", h.updateTitle)
		admin.PUT("/color", h.updateColor)
		admin.PUT("/theme", h.updateTheme)
		admin.PUT("/logo", h.updateLogo)
		admin.POST("/cache/refresh", h.refreshCache)
		admin.DELETE("/cache", h.clearCache)
	}
}
