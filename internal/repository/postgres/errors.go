package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	ierr "github.com/liyaqa/membership/internal/errors"
)

const uniqueViolationCode = "23505"

// translateErr maps driver errors onto the service-level sentinel taxonomy:
// missing rows become ErrNotFound, unique violations become ErrAlreadyExists,
// everything else is a database failure.
func translateErr(err error, entity string, details map[string]any) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ierr.WithError(err).
			WithMessage(entity + " not found").
			WithReportableDetails(details).
			Mark(ierr.ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
		return ierr.WithError(err).
			WithMessage(entity + " already exists").
			WithReportableDetails(details).
			Mark(ierr.ErrAlreadyExists)
	}

	return ierr.WithError(err).
		WithMessage("failed to access " + entity).
		WithReportableDetails(details).
		Mark(ierr.ErrDatabase)
}
