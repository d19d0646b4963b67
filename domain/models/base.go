package models

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrImmutableRecord is returned by gorm hooks on append-only tables.
var ErrImmutableRecord = errors.New("record is append-only")

func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func rejectMutation(*gorm.DB) error {
	return ErrImmutableRecord
}
