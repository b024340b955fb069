package helpers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/queryvault/queryvault/internal/services"
	"gorm.io/gorm"
)

// CreateTestQuery creates a query through the service layer and returns it.
func CreateTestQuery(t *testing.T, db *gorm.DB, title, sqlBody string, tags []string) *services.QueryResult {
	result, err := services.CreateQuery(db, services.QueryInput{
		Title:   title,
		SQLBody: sqlBody,
		Author:  "tester",
		Tags:    tags,
	})
	if err != nil {
		t.Fatalf("Failed to create query %q: %v", title, err)
	}
	return result
}

// UniqueTitle returns a title that cannot collide across parallel tests.
func UniqueTitle(prefix string) string {
	return prefix + "-" + uuid.New().String()
}
