package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	domainRepo "github.com/sangkips/salon-api/internal/domain/repository"
)

const uniqueViolation = "23505"

// translate maps postgres constraint errors onto the domain sentinels
func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domainRepo.ErrDuplicate
	}
	return err
}
