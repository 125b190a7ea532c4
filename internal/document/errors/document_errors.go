package documenterrors

import (
	"net/http"

	"hrm-system/internal/shared/apperror"
)

var (
	ErrDocumentNotFound = apperror.New(
		apperror.CodeNotFound,
		"document not found",
		http.StatusNotFound,
	)
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"source request not found",
		http.StatusNotFound,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrCreatorNotResolved = apperror.New(
		apperror.CodeNotFound,
		"created_by does not resolve to an identity or employee",
		http.StatusNotFound,
	)
	ErrForbidden = apperror.New(
		apperror.CodeForbidden,
		"you are not allowed to modify this document",
		http.StatusForbidden,
	)
	ErrInvalidDocumentID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid document id",
		http.StatusBadRequest,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidInput,
		"invalid document status",
		http.StatusBadRequest,
	)
	ErrGenerationFailed = apperror.New(
		apperror.CodeInternalError,
		"document artifact generation failed",
		http.StatusInternalServerError,
	)
)
