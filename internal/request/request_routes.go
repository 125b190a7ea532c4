package request

import (
	"hrm-system/internal/middleware"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	enforcer *casbin.Enforcer,
	rdb *redis.Client,
) {
	requests := r.Group("/requests")
	requests.Use(middleware.AuthMiddleware(), middleware.ContextLogger(zap.L()))
	{
		requests.GET("", middleware.RBACAuthorize(enforcer, "request", "read"), handler.List)
		requests.GET("/:id", middleware.RBACAuthorize(enforcer, "request", "read"), handler.GetById)
		requests.GET("/employee/:employeeId", middleware.RBACAuthorize(enforcer, "request", "read"), handler.GetByEmployee)
		requests.GET("/status/:status", middleware.RBACAuthorize(enforcer, "request", "read"), handler.GetByStatus)
		requests.POST("", middleware.RBACAuthorize(enforcer, "request", "create"), middleware.Idempotency(rdb), handler.Create)
		requests.PATCH("/:id", middleware.RBACAuthorize(enforcer, "request", "update"), handler.Update)
		requests.PATCH("/:id/status", middleware.RBACAuthorize(enforcer, "request", "update"), handler.UpdateStatus)
		requests.DELETE("/:id", middleware.RBACAuthorize(enforcer, "request", "delete"), handler.Delete)
	}
}
