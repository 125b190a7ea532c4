package app

import (
	"database/sql"
	"os"

	"hrm-system/internal/attachment"
	"hrm-system/internal/document"
	"hrm-system/internal/employee"
	"hrm-system/internal/identity"
	"hrm-system/internal/messaging/kafka"
	"hrm-system/internal/middleware"
	"hrm-system/internal/rbac"
	"hrm-system/internal/request"
	"hrm-system/internal/template"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	employeeRepo := employee.NewRepository(gormDB)
	identityRepo := identity.NewRepository(gormDB)
	requestRepo := request.NewRepository(gormDB)
	documentRepo := document.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := rbac.NewEnforcer()
	if err != nil {
		return err
	}

	// --- Template Engine & Storage ---
	engine := template.NewEngine(
		envOr("TEMPLATES_DIR", "templates"),
		envOr("DOCUMENT_STORAGE_DIR", "storage/documents"),
		envOr("FILES_BASE_URL", "http://localhost:3000/files"),
	)
	uploader := attachment.NewLocalUploader(
		envOr("ATTACHMENTS_DIR", "storage/attachments"),
		envOr("FILES_BASE_URL", "http://localhost:3000/files"),
	)

	// --- Services ---
	resolver := identity.NewResolver(identityRepo, employeeRepo)
	documentService := document.NewService(db, documentRepo, requestRepo, resolver, engine, outboxRepo)
	// The document service doubles as the request workflow's generator hook.
	requestService := request.NewService(db, requestRepo, employeeRepo, documentService, outboxRepo)

	// --- Handlers ---
	requestHandler := request.NewHandlerWithRedis(requestService, rdb)
	documentHandler := document.NewHandlerWithRedis(documentService, rdb)
	attachmentHandler := attachment.NewHandler(uploader)

	// --- Middleware & Routes ---
	router.Use(middleware.RequestID())
	router.Use(middleware.RateLimitByIP(rate.Limit(20), 40))

	api := router.Group("/api/v1")
	{
		request.RegisterRoutes(api, requestHandler, enforcer, rdb)
		document.RegisterRoutes(api, documentHandler, enforcer, rdb)
		attachment.RegisterRoutes(api, attachmentHandler)
	}

	return nil
}
