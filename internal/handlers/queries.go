package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/queryvault/queryvault/internal/services"
	"github.com/queryvault/queryvault/internal/types"
	"github.com/queryvault/queryvault/internal/utils"
	"gorm.io/gorm"
)

// QueryHandler handles the /api/queries routes
type QueryHandler struct {
	DB *gorm.DB
}

// queryRequest is the request body shape shared by POST and PUT.
type queryRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	SQLBody     string            `json:"sqlBody"`
	Author      string            `json:"author"`
	Tags        types.FlexStrings `json:"tags"`
	Favorite    bool              `json:"favorite"`
	ParentID    *types.FlexUint64 `json:"parentId"`
}

func (r *queryRequest) toInput() services.QueryInput {
	input := services.QueryInput{
		Title:       r.Title,
		Description: r.Description,
		SQLBody:     r.SQLBody,
		Author:      r.Author,
		Tags:        r.Tags.Slice(),
		IsFavorite:  r.Favorite,
	}
	if r.ParentID != nil {
		parentID := r.ParentID.Uint64()
		input.ParentID = &parentID
	}
	return input
}

// GetQueries handles GET /api/queries?search=...
// @Summary List queries
// @Description List all stored queries, optionally filtered by a case-insensitive substring search over title, description, SQL body, author, and tag names
// @Tags Queries
// @Accept json
// @Produce json
// @Param search query string false "Filter text"
// @Success 200 {array} services.QueryResult
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /queries [get]
func (h *QueryHandler) GetQueries(c *fiber.Ctx) error {
	results, err := services.ListQueries(h.DB, c.Query("search"))
	if err != nil {
		return respondServiceError(c, err, "getQueries")
	}
	return c.Status(fiber.StatusOK).JSON(results)
}

// GetQuery handles GET /api/queries/:id
// @Summary Get a query
// @Description Get a single query by id, tags joined in
// @Tags Queries
// @Accept json
// @Produce json
// @Param id path int true "Query ID"
// @Success 200 {object} services.QueryResult
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /queries/{id} [get]
func (h *QueryHandler) GetQuery(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return utils.ValidationErrorResponse(c, err.Error())
	}

	result, err := services.GetQueryByID(h.DB, id)
	if err != nil {
		return respondServiceError(c, err, "getQuery")
	}
	if result == nil {
		return utils.NotFoundResponse(c, "Query not found")
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// CreateQuery handles POST /api/queries
// @Summary Create a query
// @Description Create a query with its tags and initial version snapshot
// @Tags Queries
// @Accept json
// @Produce json
// @Param body body queryRequest true "Query to create"
// @Success 201 {object} services.QueryResult
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /queries [post]
func (h *QueryHandler) CreateQuery(c *fiber.Ctx) error {
	var body queryRequest
	if err := c.BodyParser(&body); err != nil {
		return utils.ValidationErrorResponse(c, "Invalid input")
	}

	result, err := services.CreateQuery(h.DB, body.toInput())
	if err != nil {
		return respondServiceError(c, err, "createQuery")
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// UpdateQuery handles PUT /api/queries/:id
// @Summary Update a query
// @Description Overwrite a query's fields, replace its tag set, and append a version snapshot when the SQL body changed
// @Tags Queries
// @Accept json
// @Produce json
// @Param id path int true "Query ID"
// @Param body body queryRequest true "New query state"
// @Success 200 {object} services.QueryResult
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /queries/{id} [put]
func (h *QueryHandler) UpdateQuery(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return utils.ValidationErrorResponse(c, err.Error())
	}

	var body queryRequest
	if err := c.BodyParser(&body); err != nil {
		return utils.ValidationErrorResponse(c, "Invalid input")
	}

	result, err := services.UpdateQuery(h.DB, id, body.toInput())
	if err != nil {
		return respondServiceError(c, err, "updateQuery")
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// DeleteQuery handles DELETE /api/queries/:id
// @Summary Delete a query
// @Description Delete a query along with its tag associations and version history
// @Tags Queries
// @Accept json
// @Produce json
// @Param id path int true "Query ID"
// @Success 200 {object} utils.DeleteResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /queries/{id} [delete]
func (h *QueryHandler) DeleteQuery(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return utils.ValidationErrorResponse(c, err.Error())
	}

	deleted, err := services.DeleteQuery(h.DB, id)
	if err != nil {
		return respondServiceError(c, err, "deleteQuery")
	}
	if !deleted {
		return utils.NotFoundResponse(c, "Query not found")
	}
	return utils.DeleteSuccessResponse(c)
}

// GetQueryVersions handles GET /api/queries/:id/versions
// @Summary Get version history
// @Description Get the version snapshots of a query, newest first
// @Tags Queries
// @Accept json
// @Produce json
// @Param id path int true "Query ID"
// @Success 200 {array} services.VersionResult
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /queries/{id}/versions [get]
func (h *QueryHandler) GetQueryVersions(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return utils.ValidationErrorResponse(c, err.Error())
	}

	// Missing parent is a 404 at this layer; the store itself stays lenient
	query, err := services.GetQueryByID(h.DB, id)
	if err != nil {
		return respondServiceError(c, err, "getQueryVersions")
	}
	if query == nil {
		return utils.NotFoundResponse(c, "Query not found")
	}

	versions, err := services.ListQueryVersions(h.DB, id)
	if err != nil {
		return respondServiceError(c, err, "getQueryVersions")
	}
	return c.Status(fiber.StatusOK).JSON(versions)
}
