package document

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
	documents := r.Group("/documents")
	documents.Use(middleware.AuthMiddleware(), middleware.ContextLogger(zap.L()))
	{
		documents.GET("", middleware.RBACAuthorize(enforcer, "document", "read"), handler.List)
		documents.GET("/:id", middleware.RBACAuthorize(enforcer, "document", "read"), handler.GetById)
		documents.GET("/request/:requestId", middleware.RBACAuthorize(enforcer, "document", "read"), handler.GetByRequest)
		documents.GET("/employee/:employeeId", middleware.RBACAuthorize(enforcer, "document", "read"), handler.GetByEmployee)
		documents.GET("/status/:status", middleware.RBACAuthorize(enforcer, "document", "read"), handler.GetByStatus)
		documents.POST("", middleware.RBACAuthorize(enforcer, "document", "create"), middleware.Idempotency(rdb), handler.Create)
		documents.POST("/generate/:requestId", middleware.RBACAuthorize(enforcer, "document", "create"), handler.Generate)
		documents.POST("/:id/regenerate", middleware.RBACAuthorize(enforcer, "document", "regenerate"), handler.Regenerate)
		documents.POST("/:id/sign", middleware.RBACAuthorize(enforcer, "document", "update"), handler.Sign)
		documents.POST("/:id/reject", middleware.RBACAuthorize(enforcer, "document", "update"), handler.Reject)
		documents.PATCH("/:id", middleware.RBACAuthorize(enforcer, "document", "update"), handler.Update)
		documents.PATCH("/:id/status", middleware.RBACAuthorize(enforcer, "document", "update"), handler.UpdateStatus)
		documents.DELETE("/:id", middleware.RBACAuthorize(enforcer, "document", "delete"), handler.Delete)
	}
}
