package storage

import (
	"errors"
	"strings"

	"lexdash/internal/ports"
)

// Re-exported so callers holding a *SQLiteRepository need not import ports.
var (
	ErrNotFound   = ports.ErrNotFound
	ErrForeignKey = ports.ErrForeignKey
	ErrDuplicate  = ports.ErrDuplicate
)

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// classify maps driver errors onto the port sentinels.
func classify(err error) error {
	switch {
	case isForeignKeyViolation(err):
		return errors.Join(ErrForeignKey, err)
	case isUniqueViolation(err):
		return errors.Join(ErrDuplicate, err)
	}
	return err
}
