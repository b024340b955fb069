package main

import (
	"fmt"
	"log"

	"github.com/queryvault/queryvault/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Dumps the schema GORM generates for the queryvault models, useful for
// comparing AutoMigrate output against the canonical DDL in data/initdb.
func main() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		log.Fatal(err)
	}

	err = db.AutoMigrate(
		&models.Query{},
		&models.Tag{},
		&models.QueryVersion{},
	)
	if err != nil {
		log.Fatal(err)
	}

	var tables []string
	db.Raw("SELECT name FROM sqlite_master WHERE type='table'").Scan(&tables)

	for _, table := range tables {
		fmt.Printf("\n=== Table: %s ===\n", table)
		var schema string
		db.Raw(fmt.Sprintf("SELECT sql FROM sqlite_master WHERE name='%s'", table)).Scan(&schema)
		fmt.Println(schema)
	}
}
