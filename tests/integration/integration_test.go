package integration_test

import (
	"context"
	"testing"
	"time"

	"github.com/queryvault/queryvault/internal/config"
	"github.com/queryvault/queryvault/internal/database"
	"github.com/queryvault/queryvault/internal/services"
	"github.com/queryvault/queryvault/tests/helpers"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// TestWithMySQL runs the query store contract against a real MySQL container
func TestWithMySQL(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	mysqlContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mysql:8.4",
			ExposedPorts: []string{"3306/tcp"},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": "rootpass",
				"MYSQL_DATABASE":      "testdb",
				"MYSQL_USER":          "testuser",
				"MYSQL_PASSWORD":      "testpass",
			},
			WaitingFor: wait.ForLog("ready for connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start MySQL container: %v", err)
	}
	defer func() {
		if err := mysqlContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate MySQL container: %v", err)
		}
	}()

	host, err := mysqlContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := mysqlContainer.MappedPort(ctx, "3306")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := &config.Config{
		DBType:            "mysql",
		DBHost:            host,
		DBPort:            port.Port(),
		DBDatabase:        "testdb",
		DBUser:            "testuser",
		DBPassword:        "testpass",
		DBConnectionLimit: 5,
	}

	// Wait for database to be ready
	time.Sleep(5 * time.Second)

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Run("CreateAndRetrieveQuery", func(t *testing.T) {
		testCreateAndRetrieveQuery(t, db)
	})

	t.Run("VersionHistory", func(t *testing.T) {
		testVersionHistory(t, db)
	})

	t.Run("TagReplacement", func(t *testing.T) {
		testTagReplacement(t, db)
	})

	t.Run("DeleteCascade", func(t *testing.T) {
		testDeleteCascade(t, db)
	})

	t.Run("SearchFilter", func(t *testing.T) {
		testSearchFilter(t, db)
	})

	t.Run("HealthCheck", func(t *testing.T) {
		result := services.HealthCheck(cfg, db)
		if result.Status != "healthy" {
			t.Errorf("Expected healthy status, got: %+v", result)
		}
	})
}

func testCreateAndRetrieveQuery(t *testing.T, db *gorm.DB) {
	title := helpers.UniqueTitle("int-create")
	created := helpers.CreateTestQuery(t, db, title, "SELECT * FROM ventas;", []string{"ventas", "reportes"})

	fetched, err := services.GetQueryByID(db, created.ID)
	if err != nil {
		t.Fatalf("Failed to retrieve query: %v", err)
	}
	if fetched == nil {
		t.Fatal("Expected query to exist")
	}
	if fetched.Title != title {
		t.Errorf("Expected title %q, got %q", title, fetched.Title)
	}
	if len(fetched.Tags) != 2 {
		t.Errorf("Expected 2 tags, got %v", fetched.Tags)
	}
}

func testVersionHistory(t *testing.T, db *gorm.DB) {
	created := helpers.CreateTestQuery(t, db, helpers.UniqueTitle("int-versions"), "SELECT 1;", nil)

	// No-op body update must not grow the history
	_, err := services.UpdateQuery(db, created.ID, services.QueryInput{
		Title: created.Title, SQLBody: "SELECT 1;", Author: created.Author,
	})
	if err != nil {
		t.Fatalf("Failed to update query: %v", err)
	}

	versions, err := services.ListQueryVersions(db, created.ID)
	if err != nil {
		t.Fatalf("Failed to list versions: %v", err)
	}
	if len(versions) != 1 {
		t.Fatalf("Expected 1 version after no-op update, got %d", len(versions))
	}

	_, err = services.UpdateQuery(db, created.ID, services.QueryInput{
		Title: created.Title, SQLBody: "SELECT 2;", Author: created.Author,
	})
	if err != nil {
		t.Fatalf("Failed to update query: %v", err)
	}

	versions, err = services.ListQueryVersions(db, created.ID)
	if err != nil {
		t.Fatalf("Failed to list versions: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("Expected 2 versions after body change, got %d", len(versions))
	}
	if versions[0].SQLBody != "SELECT 2;" {
		t.Errorf("Expected newest version first, got %q", versions[0].SQLBody)
	}
}

func testTagReplacement(t *testing.T, db *gorm.DB) {
	created := helpers.CreateTestQuery(t, db, helpers.UniqueTitle("int-tags"), "SELECT 1;", []string{"a", "b"})

	updated, err := services.UpdateQuery(db, created.ID, services.QueryInput{
		Title: created.Title, SQLBody: created.SQLBody, Author: created.Author,
		Tags: []string{"b", "c"},
	})
	if err != nil {
		t.Fatalf("Failed to update query: %v", err)
	}
	if len(updated.Tags) != 2 {
		t.Fatalf("Expected tag set {b, c}, got %v", updated.Tags)
	}
	for _, tag := range updated.Tags {
		if tag == "a" {
			t.Errorf("Expected tag a to be replaced, got %v", updated.Tags)
		}
	}
}

func testDeleteCascade(t *testing.T, db *gorm.DB) {
	created := helpers.CreateTestQuery(t, db, helpers.UniqueTitle("int-delete"), "SELECT 1;", []string{"temp"})

	deleted, err := services.DeleteQuery(db, created.ID)
	if err != nil {
		t.Fatalf("Failed to delete query: %v", err)
	}
	if !deleted {
		t.Fatal("Expected delete to report success")
	}

	fetched, err := services.GetQueryByID(db, created.ID)
	if err != nil {
		t.Fatalf("Failed to get query after delete: %v", err)
	}
	if fetched != nil {
		t.Error("Expected query to be gone")
	}

	versions, err := services.ListQueryVersions(db, created.ID)
	if err != nil {
		t.Fatalf("Expected no error listing versions of deleted query, got: %v", err)
	}
	if len(versions) != 0 {
		t.Errorf("Expected empty version history, got %d entries", len(versions))
	}
}

func testSearchFilter(t *testing.T, db *gorm.DB) {
	needle := helpers.UniqueTitle("int-search-needle")
	helpers.CreateTestQuery(t, db, needle, "SELECT * FROM facturas;", []string{"facturacion"})

	results, err := services.ListQueries(db, "FACTURACION")
	if err != nil {
		t.Fatalf("Failed to search queries: %v", err)
	}

	found := false
	for _, r := range results {
		if r.Title == needle {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected case-insensitive tag search to find %q", needle)
	}
}
