package attachment

import (
	"io"
	"net/http"

	"hrm-system/internal/shared/apperror"
	"hrm-system/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxAttachmentSize = 10 << 20

type Handler struct {
	uploader Uploader
	logger   *zap.Logger
}

func NewHandler(uploader Uploader, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("attachment.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attachment.handler")
	}
	return &Handler{uploader: uploader, logger: l}
}

func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "file field is required", err.Error())
		return
	}
	if fileHeader.Size > maxAttachmentSize {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "file exceeds the 10MB limit", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("attachment open failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, apperror.CodeInternalError, "failed to read upload", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("attachment read failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, apperror.CodeInternalError, "failed to read upload", nil)
		return
	}

	ref, err := h.uploader.Upload(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		h.logger.Error("attachment store failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, apperror.CodeInternalError, "failed to store upload", nil)
		return
	}

	response.Success(c, http.StatusCreated, ref, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.uploader.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid attachment id", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}
