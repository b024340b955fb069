package services

import (
	"strings"

	"github.com/queryvault/queryvault/internal/models"
	"github.com/queryvault/queryvault/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResolveTag maps a free-text tag name to a stable id, creating the tag on
// first use. Names are trimmed; uniqueness is case-sensitive and enforced by
// the UNIQUE index on nombre, so concurrent resolution of the same new name
// leaves at most one surviving row. Insert-if-absent, never check-then-insert.
func ResolveTag(tx *gorm.DB, name string) (uint64, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return 0, types.NewValidationError("tag", "tag name is required")
	}

	tag := models.Tag{Name: trimmed}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&tag).Error; err != nil {
		return 0, err
	}
	if tag.ID != 0 {
		return tag.ID, nil
	}

	// Conflict path: the row already existed, read the surviving id
	if err := tx.Where("nombre = ?", trimmed).First(&tag).Error; err != nil {
		return 0, err
	}
	return tag.ID, nil
}
