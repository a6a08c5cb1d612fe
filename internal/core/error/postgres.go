package errx

import (
	"database/sql"
	"errors"
	"net/http"
)

// WrapPostgres maps Postgres/bun errors to AppError with appropriate status codes.
func WrapPostgres(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return New(err, http.StatusNotFound, StoreNotFoundMessage)
	}

	return New(err, http.StatusBadGateway, StoreErrorMessage)
}
