package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateSlug is returned when a listing slug collides with an
// existing one. The slug is derived once from the title, so callers
// must surface the collision instead of mutating the slug.
var ErrDuplicateSlug = errors.New("duplicate slug")

// ErrDuplicate is returned when a uniqueness constraint other than the
// listing slug is violated (username, email, tag name).
var ErrDuplicate = errors.New("duplicate record")

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgForeignKeyViolation
}
