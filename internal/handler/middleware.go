package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hospital-server/shared/models"
)

// SessionMiddleware resolves the session from the cookie or the X-Session-ID header.
func (h *GeneralConfigHandler) SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(h.sessionCookie)
		if err != nil || sessionID == "" {
			sessionID = c.GetHeader(SessionHeader)
		}
		if sessionID == "" {
			h.logger.Debug("Session id missing", zap.String("path", c.Request.URL.Path))
			handleServiceError(c, models.ErrUnauthorized)
			return
		}

		session, err := h.sessionRepo.GetSession(c.Request.Context(), sessionID)
		if err != nil {
			h.logger.Warn("Session lookup failed", zap.Error(err))
			handleServiceError(c, err)
			return
		}

		c.Request = c.Request.WithContext(models.ContextWithSession(c.Request.Context(), session))
		c.Set("user_id", session.UserID)
		c.Next()
	}
}

// RequireAdmin must run after SessionMiddleware.
func (h *GeneralConfigHandler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := models.GetSessionFromContext(c.Request.Context())
		if !ok {
			handleServiceError(c, models.ErrUnauthorized)
			return
		}
		if !session.IsAdmin {
			h.logger.Warn("Non-admin attempted a config change",
				zap.String("user_id", session.UserID),
				zap.String("path", c.Request.URL.Path),
			)
			handleServiceError(c, models.ErrForbidden)
			return
		}
		c.Next()
	}
}
