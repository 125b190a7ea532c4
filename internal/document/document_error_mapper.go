package document

import (
	"errors"
	"strings"

	documenterrors "hrm-system/internal/document/errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// mapRepositoryError turns postgres constraint violations into domain errors
// so handlers answer 404 instead of 500 when a referenced row is gone.
func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		switch pgErr.ConstraintName {
		case "fk_documents_source_request":
			return documenterrors.ErrRequestNotFound
		case "fk_documents_requested_by", "fk_documents_created_by", "fk_documents_signed_by":
			return documenterrors.ErrEmployeeNotFound
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "violates foreign key constraint") {
		if strings.Contains(errMsg, "fk_documents_source_request") {
			return documenterrors.ErrRequestNotFound
		}
		return documenterrors.ErrEmployeeNotFound
	}

	return err
}
