package templateerrors

import (
	"net/http"

	"hrm-system/internal/shared/apperror"
)

var (
	ErrTemplateNotFound = apperror.New(
		apperror.CodeNotFound,
		"template not found for this document type",
		http.StatusNotFound,
	)
)
