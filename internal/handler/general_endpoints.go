package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hospital-server/shared/models"
)

func (h *GeneralConfigHandler) getGeneral(c *gin.Context) {
	cfg, err := h.configService.Get(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *GeneralConfigHandler) getTitle(c *gin.Context) {
	cfg, err := h.configService.Get(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, titleBody{Title: cfg.Title})
}

func (h *GeneralConfigHandler) getColor(c *gin.Context) {
	cfg, err := h.configService.Get(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, colorBody{Color: colorToDTO(cfg.Color)})
}

func (h *GeneralConfigHandler) getTheme(c *gin.Context) {
	cfg, err := h.configService.Get(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, themeBody{Theme: cfg.Theme})
}

func (h *GeneralConfigHandler) getLogo(c *gin.Context) {
	cfg, err := h.configService.Get(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, logoResponse{LogoURL: cfg.LogoURL})
}

func (h *GeneralConfigHandler) updateTitle(c *gin.Context) {
	var req titleBody
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}
	cfg, ok := h.update(c, models.GeneralConfigPatch{Title: &req.Title})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, titleBody{Title: cfg.Title})
}

func (h *GeneralConfigHandler) updateColor(c *gin.Context) {
	var req colorBody
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}
	cfg, ok := h.update(c, models.GeneralConfigPatch{Color: colorFromDTO(req.Color)})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, colorBody{Color: colorToDTO(cfg.Color)})
}

func (h *GeneralConfigHandler) updateTheme(c *gin.Context) {
	var req themeBody
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}
	cfg, ok := h.update(c, models.GeneralConfigPatch{Theme: &req.Theme})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, themeBody{Theme: cfg.Theme})
}

func (h *GeneralConfigHandler) updateLogo(c *gin.Context) {
	var req logoBody
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}
	cfg, ok := h.update(c, models.GeneralConfigPatch{LogoURL: req.LogoURL})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, logoResponse{LogoURL: cfg.LogoURL})
}

// update runs the patch and writes the error response itself on failure.
func (h *GeneralConfigHandler) update(c *gin.Context, patch models.GeneralConfigPatch) (models.GeneralConfig, bool) {
	cfg, err := h.configService.Update(c.Request.Context(), patch)
	if err != nil {
		handleServiceError(c, err)
		return models.GeneralConfig{}, false
	}
	if session, ok := models.GetSessionFromContext(c.Request.Context()); ok {
		h.logger.Info("General config changed",
			zap.String("user_id", session.UserID),
			zap.String("request_id", c.GetString("request_id")),
		)
	}
	return cfg, true
}

func (h *GeneralConfigHandler) refreshCache(c *gin.Context) {
	cfg, err := h.configService.Refresh(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *GeneralConfigHandler) clearCache(c *gin.Context) {
	h.configService.ClearCache()
	c.Status(http.StatusNoContent)
}
