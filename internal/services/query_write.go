package services

import (
	"errors"
	"strings"

	"github.com/queryvault/queryvault/internal/models"
	"github.com/queryvault/queryvault/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QueryInput carries the mutable fields of a query for create/update.
type QueryInput struct {
	Title       string
	Description string
	SQLBody     string
	Author      string
	Tags        []string
	ParentID    *uint64
	IsFavorite  bool
}

// CreateQuery inserts a new query, records its initial version, and
// associates its tags, all inside one transaction. Any failure rolls the
// whole write back. Returns the freshly read, fully joined query.
func CreateQuery(db *gorm.DB, input QueryInput) (*QueryResult, error) {
	if err := validateQueryInput(&input); err != nil {
		return nil, err
	}

	var queryID uint64
	err := db.Transaction(func(tx *gorm.DB) error {
		query := models.Query{
			Title:       input.Title,
			Description: input.Description,
			SQLBody:     input.SQLBody,
			Author:      input.Author,
			IsFavorite:  input.IsFavorite,
			ParentID:    input.ParentID,
		}
		if err := tx.Create(&query).Error; err != nil {
			return err
		}
		queryID = query.ID

		// Initial version, unconditionally
		if err := RecordVersion(tx, query.ID, query.SQLBody); err != nil {
			return err
		}

		return attachTags(tx, query.ID, input.Tags)
	})
	if err != nil {
		return nil, classifyError("createQuery", err)
	}

	return GetQueryByID(db, queryID)
}

// UpdateQuery overwrites the mutable fields of an existing query, appends a
// version snapshot when the SQL body changed, and replaces the tag set
// wholesale. All-or-nothing, same as CreateQuery.
func UpdateQuery(db *gorm.DB, id uint64, input QueryInput) (*QueryResult, error) {
	if err := validateQueryInput(&input); err != nil {
		return nil, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var current models.Query
		if err := lockForUpdate(tx).First(&current, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return types.NewNotFoundError("query", id)
			}
			return err
		}

		bodyChanged := current.SQLBody != input.SQLBody

		updates := map[string]interface{}{
			"titulo":      input.Title,
			"descripcion": input.Description,
			"sql_codigo":  input.SQLBody,
			"autor":       input.Author,
			"favorito":    input.IsFavorite,
		}
		if err := tx.Model(&models.Query{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		if bodyChanged {
			if err := RecordVersion(tx, id, input.SQLBody); err != nil {
				return err
			}
		}

		// Authoritative tag replacement, not a merge
		if err := tx.Where("consulta_id = ?", id).Delete(&models.QueryTag{}).Error; err != nil {
			return err
		}
		return attachTags(tx, id, input.Tags)
	})
	if err != nil {
		return nil, classifyError("updateQuery", err)
	}

	return GetQueryByID(db, id)
}

// attachTags resolves each tag name and inserts the association rows.
// The input list is deduplicated first so repeated names cannot trip the
// composite primary key.
func attachTags(tx *gorm.DB, queryID uint64, names []string) error {
	for _, name := range dedupeTagNames(names) {
		tagID, err := ResolveTag(tx, name)
		if err != nil {
			return err
		}

		assoc := models.QueryTag{QueryID: queryID, TagID: tagID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&assoc).Error; err != nil {
			return err
		}
	}
	return nil
}

// dedupeTagNames trims each name and drops exact duplicates, preserving
// first-seen order. Case-sensitive per the store's uniqueness rule.
func dedupeTagNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	deduped := make([]string, 0, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		deduped = append(deduped, trimmed)
	}
	return deduped
}

// validateQueryInput rejects missing required fields before any write.
func validateQueryInput(input *QueryInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return types.NewValidationError("title", "title is required")
	}
	if strings.TrimSpace(input.SQLBody) == "" {
		return types.NewValidationError("sqlBody", "sqlBody is required")
	}
	return nil
}

// lockForUpdate applies a row lock where the dialect supports one.
// SQLite serializes writers on its own and rejects FOR UPDATE syntax.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// classifyError passes typed errors through and wraps everything else as a
// persistence failure so callers can tell input faults from store faults.
func classifyError(op string, err error) error {
	var validationErr *types.ValidationError
	var notFoundErr *types.NotFoundError
	if errors.As(err, &validationErr) || errors.As(err, &notFoundErr) {
		return err
	}
	return types.NewPersistenceError(op, err)
}
