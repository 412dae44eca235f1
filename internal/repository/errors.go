package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDuplicate se devuelve cuando una restriccion unica rechaza el insert.
	ErrDuplicate = errors.New("duplicate record")
	// ErrAlreadyFinalized indica que el test ya se convirtio en un puntaje.
	ErrAlreadyFinalized = errors.New("personality test already finalized")
)

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
