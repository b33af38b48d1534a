package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrConflict indica que una restriccion de unicidad rechazo la escritura.
var ErrConflict = errors.New("unique constraint violation")

const uniqueViolation = "23505"

func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrConflict
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}
