package postgres

import (
	domainerrors "shopreg/internal/domain/errors"
	"shopreg/internal/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation = "23505"

	usernameUniqueConstraint = "users_username_key"
	shopNameUniqueConstraint = "shop_names_name_key"
)

// mapUniqueViolation translates a unique-constraint violation into the
// matching conflict error. It returns nil when err is not a unique violation.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		switch pgErr.ConstraintName {
		case usernameUniqueConstraint:
			return domainerrors.ErrUsernameAlreadyExists
		case shopNameUniqueConstraint:
			return domainerrors.ErrShopNameAlreadyExists
		default:
			return domainerrors.ErrConflict
		}
	}

	// Reached only when gorm's TranslateError is on and the driver error was replaced.
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainerrors.ErrConflict
	}

	return nil
}
