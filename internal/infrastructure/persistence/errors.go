package persistence

import (
	"errors"

	"github.com/roofpo/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateWriteError maps unique-constraint violations to the domain's ErrAlreadyExists.
// It relies on gorm.Config.TranslateError being enabled.
func translateWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}

// notFound maps a missing record to the domain's ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}
