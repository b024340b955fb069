package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/queryvault/queryvault/internal/handlers"
	"github.com/queryvault/queryvault/internal/models"
	"github.com/queryvault/queryvault/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "Failed to create test database")

	err = db.AutoMigrate(&models.Query{}, &models.Tag{}, &models.QueryVersion{})
	require.NoError(t, err, "Failed to migrate test database")

	app := fiber.New()
	queryHandler := &handlers.QueryHandler{DB: db}

	api := app.Group("/api")
	queries := api.Group("/queries")
	queries.Get("/", queryHandler.GetQueries)
	queries.Post("/", queryHandler.CreateQuery)
	queries.Get("/:id", queryHandler.GetQuery)
	queries.Put("/:id", queryHandler.UpdateQuery)
	queries.Delete("/:id", queryHandler.DeleteQuery)
	queries.Get("/:id/versions", queryHandler.GetQueryVersions)

	return app, db
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestCreateQueryEndpoint(t *testing.T) {
	app, _ := setupApp(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/queries", fiber.Map{
		"title":   "Top ventas",
		"sqlBody": "SELECT * FROM ventas;",
		"author":  "ana",
		"tags":    []string{"ventas", "reportes"},
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var result services.QueryResult
	decodeBody(t, resp, &result)
	assert.NotZero(t, result.ID)
	assert.Equal(t, "Top ventas", result.Title)
	assert.ElementsMatch(t, []string{"ventas", "reportes"}, result.Tags)
}

func TestCreateQueryEndpointValidation(t *testing.T) {
	app, _ := setupApp(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/queries", fiber.Map{
		"title":   "   ",
		"sqlBody": "SELECT 1;",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body map[string]interface{}
	decodeBody(t, resp, &body)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "validation", body["type"])
}

func TestCreateQueryEndpointMalformedBody(t *testing.T) {
	app, _ := setupApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/queries", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

// Tags may arrive as a single string instead of an array.
func TestCreateQueryEndpointFlexibleTags(t *testing.T) {
	app, _ := setupApp(t)

	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/queries", fiber.Map{
		"title":   "T",
		"sqlBody": "SELECT 1;",
		"tags":    "solo",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var result services.QueryResult
	decodeBody(t, resp, &result)
	assert.Equal(t, []string{"solo"}, result.Tags)
}

// parentId may arrive as a JSON number or a numeric string.
func TestCreateQueryEndpointFlexibleParentID(t *testing.T) {
	app, db := setupApp(t)

	parent, err := services.CreateQuery(db, services.QueryInput{
		Title: "Parent", SQLBody: "SELECT 1;",
	})
	require.NoError(t, err)

	// Number form
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/queries", fiber.Map{
		"title":    "Child numeric",
		"sqlBody":  "SELECT 2;",
		"parentId": parent.ID,
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var numericChild services.QueryResult
	decodeBody(t, resp, &numericChild)
	require.NotNil(t, numericChild.ParentID)
	assert.Equal(t, parent.ID, *numericChild.ParentID)

	// String form
	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/queries", fiber.Map{
		"title":    "Child string",
		"sqlBody":  "SELECT 3;",
		"parentId": fmt.Sprintf("%d", parent.ID),
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var stringChild services.QueryResult
	decodeBody(t, resp, &stringChild)
	require.NotNil(t, stringChild.ParentID)
	assert.Equal(t, parent.ID, *stringChild.ParentID)
}

func TestGetQueryEndpoint(t *testing.T) {
	app, db := setupApp(t)

	created, err := services.CreateQuery(db, services.QueryInput{
		Title: "T", SQLBody: "SELECT 1;",
	})
	require.NoError(t, err)

	resp, err := app.Test(jsonRequest(http.MethodGet, fmt.Sprintf("/api/queries/%d", created.ID), nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result services.QueryResult
	decodeBody(t, resp, &result)
	assert.Equal(t, created.ID, result.ID)
}

func TestGetQueryEndpointNotFound(t *testing.T) {
	app, _ := setupApp(t)

	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/queries/9999", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetQueryEndpointBadID(t *testing.T) {
	app, _ := setupApp(t)

	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/queries/notanumber", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestListQueriesEndpoint(t *testing.T) {
	app, db := setupApp(t)

	_, err := services.CreateQuery(db, services.QueryInput{
		Title: "Usuarios", SQLBody: "SELECT * FROM usuarios;",
	})
	require.NoError(t, err)
	_, err = services.CreateQuery(db, services.QueryInput{
		Title: "Ventas", SQLBody: "SELECT * FROM ventas;", Tags: []string{"finanzas"},
	})
	require.NoError(t, err)

	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/queries", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var results []services.QueryResult
	decodeBody(t, resp, &results)
	assert.Len(t, results, 2)

	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/queries?search=FINANZAS", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	decodeBody(t, resp, &results)
	require.Len(t, results, 1)
	assert.Equal(t, "Ventas", results[0].Title)
}

func TestUpdateQueryEndpoint(t *testing.T) {
	app, db := setupApp(t)

	created, err := services.CreateQuery(db, services.QueryInput{
		Title: "T", SQLBody: "SELECT 1;", Tags: []string{"a", "b"},
	})
	require.NoError(t, err)

	resp, err := app.Test(jsonRequest(http.MethodPut, fmt.Sprintf("/api/queries/%d", created.ID), fiber.Map{
		"title":    "T2",
		"sqlBody":  "SELECT 2;",
		"favorite": true,
		"tags":     []string{"b"},
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result services.QueryResult
	decodeBody(t, resp, &result)
	assert.Equal(t, "T2", result.Title)
	assert.True(t, result.IsFavorite)
	assert.Equal(t, []string{"b"}, result.Tags)
}

func TestUpdateQueryEndpointNotFound(t *testing.T) {
	app, _ := setupApp(t)

	resp, err := app.Test(jsonRequest(http.MethodPut, "/api/queries/9999", fiber.Map{
		"title":   "T",
		"sqlBody": "SELECT 1;",
	}), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeleteQueryEndpoint(t *testing.T) {
	app, db := setupApp(t)

	created, err := services.CreateQuery(db, services.QueryInput{
		Title: "T", SQLBody: "SELECT 1;",
	})
	require.NoError(t, err)

	resp, err := app.Test(jsonRequest(http.MethodDelete, fmt.Sprintf("/api/queries/%d", created.ID), nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decodeBody(t, resp, &body)
	assert.Equal(t, true, body["ok"])

	resp, err = app.Test(jsonRequest(http.MethodGet, fmt.Sprintf("/api/queries/%d", created.ID), nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeleteQueryEndpointNotFound(t *testing.T) {
	app, _ := setupApp(t)

	resp, err := app.Test(jsonRequest(http.MethodDelete, "/api/queries/9999", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetQueryVersionsEndpoint(t *testing.T) {
	app, db := setupApp(t)

	created, err := services.CreateQuery(db, services.QueryInput{
		Title: "T", SQLBody: "SELECT 1;",
	})
	require.NoError(t, err)

	_, err = services.UpdateQuery(db, created.ID, services.QueryInput{
		Title: "T", SQLBody: "SELECT 2;",
	})
	require.NoError(t, err)

	resp, err := app.Test(jsonRequest(http.MethodGet, fmt.Sprintf("/api/queries/%d/versions", created.ID), nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var versions []services.VersionResult
	decodeBody(t, resp, &versions)
	require.Len(t, versions, 2)
	assert.Equal(t, "SELECT 2;", versions[0].SQLBody)
}

func TestGetQueryVersionsEndpointNotFound(t *testing.T) {
	app, _ := setupApp(t)

	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/queries/9999/versions", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
