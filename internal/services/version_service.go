package services

import (
	"time"

	"github.com/queryvault/queryvault/internal/models"
	"github.com/queryvault/queryvault/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// VersionResult is the API projection of a version snapshot.
type VersionResult struct {
	ID         uint64    `json:"id"`
	QueryID    uint64    `json:"queryId"`
	SQLBody    string    `json:"sqlBody"`
	RecordedAt time.Time `json:"recordedAt"`
}

// RecordVersion appends a snapshot of the SQL body for a query. It always
// appends; deciding whether a snapshot is due is the caller's job.
func RecordVersion(tx *gorm.DB, queryID uint64, sqlBody string) error {
	version := models.QueryVersion{
		QueryID: queryID,
		SQLBody: sqlBody,
	}
	return tx.Create(&version).Error
}

// ListQueryVersions returns the version history of a query, newest first.
// An unknown or deleted query id yields an empty slice, not an error; the
// HTTP layer decides whether a missing parent is worth a 404.
func ListQueryVersions(db *gorm.DB, queryID uint64) ([]VersionResult, error) {
	var rows []models.QueryVersion
	err := db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)}).
		Where("consulta_id = ?", queryID).
		Order("fecha DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, types.NewPersistenceError("listQueryVersions", err)
	}

	results := make([]VersionResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, VersionResult{
			ID:         row.ID,
			QueryID:    row.QueryID,
			SQLBody:    row.SQLBody,
			RecordedAt: row.RecordedAt,
		})
	}
	return results, nil
}
