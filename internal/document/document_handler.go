package document

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hrm-system/internal/domain"
	"hrm-system/internal/shared/apperror"
	"hrm-system/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	rdb     *redis.Client
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("document.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("document.handler")
	}
	return &Handler{service: service, logger: l}
}

func NewHandlerWithRedis(service Service, rdb *redis.Client, logger ...*zap.Logger) *Handler {
	h := NewHandler(service, logger...)
	h.rdb = rdb
	return h
}

// releaseIdempotencyLock frees the in-flight lock set by the idempotency
// middleware once the handler has run.
func (h *Handler) releaseIdempotencyLock(c *gin.Context) {
	if h.rdb == nil {
		return
	}
	if lk := c.GetString("idempotency_lock_key"); lk != "" {
		h.rdb.Del(c.Request.Context(), lk)
	}
}

// cacheIdempotentResponse stores the successful response so a retry with the
// same Idempotency-Key replays it instead of repeating the mutation.
func (h *Handler) cacheIdempotentResponse(c *gin.Context, resp any) {
	if h.rdb == nil {
		return
	}
	ck := c.GetString("idempotency_cache_key")
	if ck == "" {
		return
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := h.rdb.Set(c.Request.Context(), ck, payload, 24*time.Hour).Err(); err != nil {
		h.logger.Warn("cache idempotent response", zap.Error(err))
	}
}

func actorFrom(c *gin.Context) domain.Actor {
	return domain.Actor{
		EmployeeID: c.GetString("employee_id"),
		Role:       domain.ParseRole(c.GetString("role")),
	}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("document operation failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Create(c *gin.Context) {
	defer h.releaseIdempotencyLock(c)
	actor := actorFrom(c)

	var req CreateDocumentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http create document validation failed", zap.Error(err))
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, err.Error())
		return
	}

	resp, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.cacheIdempotentResponse(c, resp)
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) Generate(c *gin.Context) {
	actor := actorFrom(c)
	requestID := c.Param("requestId")

	if err := h.service.GenerateFromRequest(c.Request.Context(), requestID, actor); err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.GetByRequest(c.Request.Context(), requestID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) Update(c *gin.Context) {
	actor := actorFrom(c)
	id := c.Param("id")

	var req UpdateDocumentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http update document validation failed", zap.Error(err))
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, err.Error())
		return
	}

	resp, err := h.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	actor := actorFrom(c)
	id := c.Param("id")

	var req UpdateDocumentStatusInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http update document status validation failed", zap.Error(err))
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, err.Error())
		return
	}

	resp, err := h.service.UpdateStatus(c.Request.Context(), actor, id, req.Status, req.RejectionReason)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Sign(c *gin.Context) {
	actor := actorFrom(c)
	id := c.Param("id")

	resp, err := h.service.UpdateStatus(c.Request.Context(), actor, id, StatusSigned, nil)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Reject(c *gin.Context) {
	actor := actorFrom(c)
	id := c.Param("id")

	var req struct {
		RejectionReason *string `json:"rejection_reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.logger.Warn("http reject document validation failed", zap.Error(err))
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, err.Error())
		return
	}

	resp, err := h.service.UpdateStatus(c.Request.Context(), actor, id, StatusRejected, req.RejectionReason)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Regenerate(c *gin.Context) {
	actor := actorFrom(c)
	id := c.Param("id")

	var req RegenerateDocumentInput
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.logger.Warn("http regenerate document validation failed", zap.Error(err))
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, err.Error())
		return
	}

	resp, err := h.service.Regenerate(c.Request.Context(), actor, id, req.ExtraData)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	actor := actorFrom(c)
	id := c.Param("id")

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}

func (h *Handler) List(c *gin.Context) {
	f := parseFilter(c)

	resp, total, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	meta := response.NewPaginationMeta(total, f.Page, f.Limit)
	response.Success(c, http.StatusOK, resp, &meta)
}

func (h *Handler) GetById(c *gin.Context) {
	resp, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetByRequest(c *gin.Context) {
	resp, err := h.service.GetByRequest(c.Request.Context(), c.Param("requestId"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetByEmployee(c *gin.Context) {
	f := parseFilter(c)

	resp, total, err := h.service.GetByEmployee(c.Request.Context(), c.Param("employeeId"), f)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	meta := response.NewPaginationMeta(total, f.Page, f.Limit)
	response.Success(c, http.StatusOK, resp, &meta)
}

func (h *Handler) GetByStatus(c *gin.Context) {
	f := parseFilter(c)

	resp, total, err := h.service.GetByStatus(c.Request.Context(), c.Param("status"), f)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	meta := response.NewPaginationMeta(total, f.Page, f.Limit)
	response.Success(c, http.StatusOK, resp, &meta)
}

func parseFilter(c *gin.Context) Filter {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 {
		limit = 10
	}

	return Filter{
		Types:         splitParam(c.Query("type")),
		Statuses:      splitParam(c.Query("status")),
		RequestID:     c.Query("request_id"),
		RequestedByID: c.Query("requested_by"),
		CreatedByID:   c.Query("created_by"),
		SignedByID:    c.Query("signed_by"),
		TitleSearch:   c.Query("title"),
		CreatedFrom:   parseDateParam(c.Query("created_from")),
		CreatedTo:     parseDateParam(c.Query("created_to")),
		SignedFrom:    parseDateParam(c.Query("signed_from")),
		SignedTo:      parseDateParam(c.Query("signed_to")),
		Page:          page,
		Limit:         limit,
		SortBy:        c.Query("sort_by"),
		SortOrder:     c.DefaultQuery("sort_order", "desc"),
	}
}

func splitParam(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDateParam(v string) *time.Time {
	if v == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil
	}
	return &t
}
