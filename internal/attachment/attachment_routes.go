package attachment

import (
	"hrm-system/internal/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	attachments := r.Group("/attachments")
	attachments.Use(middleware.AuthMiddleware())
	// Uploads are the one endpoint that moves raw bytes, so they get their
	// own per-user limit.
	attachments.Use(middleware.RateLimitByUser(rate.Limit(1), 5))
	{
		attachments.POST("", handler.Upload)
		attachments.DELETE("/:id", handler.Delete)
	}
}
